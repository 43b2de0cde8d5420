package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

const studentColumns = `id, roll_number, full_name, department, year, dob, email, phone_number, created_at, deleted_at`

func scanStudent(row interface{ Scan(...any) error }) (*model.Student, error) {
	s := &model.Student{AdminNotes: []model.AdminNote{}}
	err := row.Scan(&s.ID, &s.RollNumber, &s.FullName, &s.Department, &s.Year, &s.DOB,
		&s.Email, &s.PhoneNumber, &s.CreatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStudent adds a student to the roster.
func CreateStudent(ctx context.Context, db *sql.DB, s model.Student) (*model.Student, error) {
	id, err := insertStudent(ctx, db, s)
	if err != nil {
		return nil, err
	}
	return GetStudent(ctx, db, id)
}

func insertStudent(ctx context.Context, ex execer, s model.Student) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO students (roll_number, full_name, department, year, dob, email, phone_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(s.RollNumber), s.FullName, s.Department, s.Year, s.DOB, s.Email, s.PhoneNumber,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, ErrDuplicateAccount
		}
		return 0, fmt.Errorf("creating student: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting student id: %w", err)
	}
	return id, nil
}

// GetStudent returns a student by ID, including admin notes.
func GetStudent(ctx context.Context, db *sql.DB, id int64) (*model.Student, error) {
	s, err := scanStudent(db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting student: %w", err)
	}

	notes, err := listNotes(ctx, db, id)
	if err != nil {
		return nil, err
	}
	s.AdminNotes = notes
	return s, nil
}

// GetStudentByRoll returns the active student with the given roll number.
func GetStudentByRoll(ctx context.Context, db *sql.DB, rollNumber string) (*model.Student, error) {
	s, err := scanStudent(db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE roll_number = ? COLLATE NOCASE AND deleted_at IS NULL`, strings.TrimSpace(rollNumber),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting student by roll number: %w", err)
	}
	return s, nil
}

// ListStudents returns active students, optionally narrowed to a
// department and/or year.
func ListStudents(ctx context.Context, db *sql.DB, department, year string) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE deleted_at IS NULL`
	var args []any
	if department != "" {
		query += ` AND department = ?`
		args = append(args, department)
	}
	if year != "" {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY roll_number`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	index := make(map[int64]int)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		index[s.ID] = len(students)
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return students, nil
	}

	// Attach notes in one pass.
	noteRows, err := db.QueryContext(ctx,
		`SELECT n.student_id, n.note, n.admin, n.created_at
		 FROM student_notes n JOIN students s ON s.id = n.student_id
		 WHERE s.deleted_at IS NULL ORDER BY n.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing student notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var studentID int64
		var n model.AdminNote
		if err := noteRows.Scan(&studentID, &n.Note, &n.Admin, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning student note: %w", err)
		}
		if i, ok := index[studentID]; ok {
			students[i].AdminNotes = append(students[i].AdminNotes, n)
		}
	}
	return students, noteRows.Err()
}

// ListStudentContexts groups active students by department and year.
func ListStudentContexts(ctx context.Context, db *sql.DB) ([]model.StudentContext, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT department, year, COUNT(*) FROM students
		 WHERE deleted_at IS NULL
		 GROUP BY department, year ORDER BY department, year`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing student contexts: %w", err)
	}
	defer rows.Close()

	var contexts []model.StudentContext
	for rows.Next() {
		var c model.StudentContext
		if err := rows.Scan(&c.Department, &c.Year, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning student context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

// AddStudentNote records an admin remark on a student.
func AddStudentNote(ctx context.Context, db *sql.DB, studentID int64, note, admin string) error {
	s, err := GetStudent(ctx, db, studentID)
	if err != nil {
		return err
	}
	if s == nil || s.DeletedAt != nil {
		return ErrNotFound
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO student_notes (student_id, note, admin) VALUES (?, ?, ?)`,
		studentID, note, admin,
	)
	if err != nil {
		return fmt.Errorf("adding student note: %w", err)
	}
	return nil
}

func listNotes(ctx context.Context, db *sql.DB, studentID int64) ([]model.AdminNote, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT note, admin, created_at FROM student_notes WHERE student_id = ? ORDER BY id`, studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing student notes: %w", err)
	}
	defer rows.Close()

	notes := []model.AdminNote{}
	for rows.Next() {
		var n model.AdminNote
		if err := rows.Scan(&n.Note, &n.Admin, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning student note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteStudent soft-deletes a student.
func DeleteStudent(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE students SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}
	return affected(result)
}

// ImportResult summarizes a roster import.
type ImportResult struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportStudents inserts new students in one transaction. Roll numbers that
// already exist, or repeat within the batch, are skipped.
func ImportStudents(ctx context.Context, db *sql.DB, students []model.Student) (*ImportResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res := &ImportResult{}
	seen := make(map[string]bool)
	for _, s := range students {
		roll := strings.ToUpper(strings.TrimSpace(s.RollNumber))
		if seen[roll] {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: duplicate in upload", s.RollNumber))
			continue
		}
		seen[roll] = true

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM students WHERE roll_number = ? COLLATE NOCASE AND deleted_at IS NULL`, roll,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("checking roll number: %w", err)
		}
		if exists > 0 {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: already registered", s.RollNumber))
			continue
		}

		s.RollNumber = roll
		if _, err := insertStudent(ctx, tx, s); err != nil {
			return nil, err
		}
		res.Added++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}
