package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spcet/lostfound/internal/model"
)

// NewClaim holds the fields of a claim submission.
type NewClaim struct {
	ItemID              int64
	StudentID           int64
	Message             string
	ProductType         string
	Description         string
	IdentificationMarks string
	LostLocation        string
	ApproximateDate     string
	MatchPercentage     int
	QAData              []model.QAPair
	AIAnalysis          *model.ClaimAnalysis
}

// ClaimFilter narrows ListClaims. Tab is a status or one of the
// model.ClaimTab* groups.
type ClaimFilter struct {
	Tab       string
	StudentID int64
	ItemID    int64
}

const claimSelect = `SELECT c.id, c.item_id, c.student_id, c.message, c.product_type, c.description,
        c.identification_marks, c.lost_location, c.approximate_date, c.match_percentage,
        c.qa_data, c.ai_analysis, c.status, c.notes, c.decided_by, c.decided_at, c.created_at,
        i.description, i.item_keyword, s.full_name, s.roll_number
 FROM claims c
 JOIN items i ON i.id = c.item_id
 JOIN students s ON s.id = c.student_id`

func scanClaim(row interface{ Scan(...any) error }) (*model.Claim, error) {
	c := &model.Claim{}
	var qa string
	var analysis, notes sql.NullString
	err := row.Scan(&c.ID, &c.ItemID, &c.StudentID, &c.Message, &c.ProductType, &c.Description,
		&c.IdentificationMarks, &c.LostLocation, &c.ApproximateDate, &c.MatchPercentage,
		&qa, &analysis, &c.Status, &notes, &c.DecidedBy, &c.DecidedAt, &c.CreatedAt,
		&c.ItemDescription, &c.ItemKeyword, &c.StudentName, &c.RollNumber)
	if err != nil {
		return nil, err
	}
	c.Notes = notes.String

	c.QAData = []model.QAPair{}
	if err := json.Unmarshal([]byte(qa), &c.QAData); err != nil {
		return nil, fmt.Errorf("decoding qa_data of claim %d: %w", c.ID, err)
	}
	if analysis.Valid && analysis.String != "" {
		c.AIAnalysis = &model.ClaimAnalysis{}
		if err := json.Unmarshal([]byte(analysis.String), c.AIAnalysis); err != nil {
			return nil, fmt.Errorf("decoding ai_analysis of claim %d: %w", c.ID, err)
		}
	}
	c.VerificationQuestions = []model.VerificationQuestion{}
	return c, nil
}

// CreateClaim records a claim after checking the item can be claimed by
// this student.
func CreateClaim(ctx context.Context, db *sql.DB, in NewClaim) (*model.Claim, error) {
	if in.MatchPercentage < 0 || in.MatchPercentage > 100 {
		return nil, fmt.Errorf("match percentage %d out of range", in.MatchPercentage)
	}

	qa := in.QAData
	if qa == nil {
		qa = []model.QAPair{}
	}
	qaJSON, err := json.Marshal(qa)
	if err != nil {
		return nil, fmt.Errorf("encoding qa_data: %w", err)
	}
	var analysisJSON any
	if in.AIAnalysis != nil {
		b, err := json.Marshal(in.AIAnalysis)
		if err != nil {
			return nil, fmt.Errorf("encoding ai_analysis: %w", err)
		}
		analysisJSON = string(b)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemType, status string
	var ownerID int64
	var deletedAt sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT item_type, status, student_id, deleted_at FROM items WHERE id = ?`, in.ItemID,
	).Scan(&itemType, &status, &ownerID, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if ownerID == in.StudentID {
		return nil, ErrOwnItem
	}
	if itemType != model.ItemTypeFound || status != model.ItemStatusActive || deletedAt.Valid {
		return nil, ErrNotClaimable
	}

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE item_id = ? AND student_id = ?
		 AND status IN ('pending', 'under_review')`,
		in.ItemID, in.StudentID,
	).Scan(&open)
	if err != nil {
		return nil, fmt.Errorf("checking open claims: %w", err)
	}
	if open > 0 {
		return nil, ErrDuplicateClaim
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, student_id, message, product_type, description,
		                     identification_marks, lost_location, approximate_date,
		                     match_percentage, qa_data, ai_analysis)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ItemID, in.StudentID, in.Message, in.ProductType, in.Description,
		in.IdentificationMarks, in.LostLocation, in.ApproximateDate,
		in.MatchPercentage, string(qaJSON), analysisJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim with its verification questions.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}

	questions, err := listVerificationQuestions(ctx, db, id)
	if err != nil {
		return nil, err
	}
	c.VerificationQuestions = questions
	return c, nil
}

// ListClaims returns claims matching the filter, newest first.
func ListClaims(ctx context.Context, db *sql.DB, f ClaimFilter) ([]model.Claim, error) {
	query := claimSelect + ` WHERE 1=1`
	var args []any

	switch f.Tab {
	case "":
	case model.ClaimTabPending:
		query += ` AND c.status IN ('pending', 'under_review')`
	case model.ClaimTabResolved:
		query += ` AND c.status IN ('approved', 'rejected')`
	default:
		query += ` AND c.status = ?`
		args = append(args, f.Tab)
	}
	if f.StudentID > 0 {
		query += ` AND c.student_id = ?`
		args = append(args, f.StudentID)
	}
	if f.ItemID > 0 {
		query += ` AND c.item_id = ?`
		args = append(args, f.ItemID)
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range claims {
		questions, err := listVerificationQuestions(ctx, db, claims[i].ID)
		if err != nil {
			return nil, err
		}
		claims[i].VerificationQuestions = questions
	}
	return claims, nil
}

func listVerificationQuestions(ctx context.Context, db *sql.DB, claimID int64) ([]model.VerificationQuestion, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT question, answer, asked_at, answered_at FROM verification_questions
		 WHERE claim_id = ? ORDER BY id`, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing verification questions: %w", err)
	}
	defer rows.Close()

	questions := []model.VerificationQuestion{}
	for rows.Next() {
		var q model.VerificationQuestion
		var answer sql.NullString
		if err := rows.Scan(&q.Question, &answer, &q.AskedAt, &q.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scanning verification question: %w", err)
		}
		q.Answer = answer.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// claimStatusTx reads a claim's status inside a transaction.
func claimStatusTx(ctx context.Context, tx *sql.Tx, claimID int64) (status string, itemID, studentID int64, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT status, item_id, student_id FROM claims WHERE id = ?`, claimID,
	).Scan(&status, &itemID, &studentID)
	if err == sql.ErrNoRows {
		return "", 0, 0, ErrNotFound
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("reading claim: %w", err)
	}
	return status, itemID, studentID, nil
}

// AddVerificationQuestion attaches an admin question to an open claim and
// moves a pending claim under review.
func AddVerificationQuestion(ctx context.Context, db *sql.DB, claimID int64, question string, adminID int64) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, _, _, err := claimStatusTx(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}
	if status != model.ClaimStatusPending && status != model.ClaimStatusUnderReview {
		return nil, ErrClaimClosed
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO verification_questions (claim_id, question, asked_by) VALUES (?, ?, ?)`,
		claimID, question, adminID,
	); err != nil {
		return nil, fmt.Errorf("adding verification question: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = 'under_review' WHERE id = ? AND status = 'pending'`, claimID,
	); err != nil {
		return nil, fmt.Errorf("moving claim under review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing verification question: %w", err)
	}
	return GetClaim(ctx, db, claimID)
}

// AnswerVerificationQuestion stores the claimant's answer to the oldest
// unanswered question.
func AnswerVerificationQuestion(ctx context.Context, db *sql.DB, claimID, studentID int64, answer string) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, _, owner, err := claimStatusTx(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}
	if owner != studentID {
		return nil, ErrNotFound
	}
	if status != model.ClaimStatusPending && status != model.ClaimStatusUnderReview {
		return nil, ErrClaimClosed
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE verification_questions SET answer = ?, answered_at = CURRENT_TIMESTAMP
		 WHERE id = (SELECT id FROM verification_questions
		             WHERE claim_id = ? AND answer IS NULL ORDER BY id LIMIT 1)`,
		answer, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("answering verification question: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNoOpenQuestion
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing answer: %w", err)
	}
	return GetClaim(ctx, db, claimID)
}

// Decision is an admin's verdict on a claim.
type Decision struct {
	ClaimID int64
	Status  string
	Notes   string
	AdminID int64
	// Notice is delivered to the claimant as a message.
	Notice string
}

// DecideClaim records a terminal decision, marks the item claimed when the
// claim is approved, and notifies the claimant, all in one transaction.
func DecideClaim(ctx context.Context, db *sql.DB, d Decision) (*model.Claim, error) {
	if !model.ValidDecision(d.Status) {
		return nil, fmt.Errorf("invalid decision status %q", d.Status)
	}
	if err := model.ValidateDecisionNotes(d.Notes); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, itemID, studentID, err := claimStatusTx(ctx, tx, d.ClaimID)
	if err != nil {
		return nil, err
	}
	if status != model.ClaimStatusPending && status != model.ClaimStatusUnderReview {
		return nil, ErrClaimClosed
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, notes = ?, decided_by = ?, decided_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		d.Status, d.Notes, d.AdminID, d.ClaimID,
	); err != nil {
		return nil, fmt.Errorf("recording decision: %w", err)
	}

	if d.Status == model.ClaimStatusApproved {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET status = 'claimed', updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND deleted_at IS NULL`, itemID,
		); err != nil {
			return nil, fmt.Errorf("marking item claimed: %w", err)
		}
	}

	if d.Notice != "" {
		sender := d.AdminID
		if err := insertMessage(ctx, tx, studentID, &sender, &itemID, d.Notice); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing decision: %w", err)
	}
	return GetClaim(ctx, db, d.ClaimID)
}
