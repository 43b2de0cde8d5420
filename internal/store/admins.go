package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

const adminColumns = `id, username, full_name, password_hash, role, created_at, deleted_at`

func scanAdmin(row interface{ Scan(...any) error }) (*model.Admin, error) {
	a := &model.Admin{}
	if err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.DeletedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAdmin creates a new admin account.
func CreateAdmin(ctx context.Context, db *sql.DB, username, fullName, passwordHash, role string) (*model.Admin, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (username, full_name, password_hash, role) VALUES (?, ?, ?, ?)`,
		username, fullName, passwordHash, role,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}

	return GetAdmin(ctx, db, id)
}

// GetAdmin returns an admin by ID.
func GetAdmin(ctx context.Context, db *sql.DB, id int64) (*model.Admin, error) {
	a, err := scanAdmin(db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// GetAdminByUsername returns the active admin with the given username.
func GetAdminByUsername(ctx context.Context, db *sql.DB, username string) (*model.Admin, error) {
	a, err := scanAdmin(db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = ? AND deleted_at IS NULL`, username,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by username: %w", err)
	}
	return a, nil
}

// ListAdmins returns all non-deleted admins.
func ListAdmins(ctx context.Context, db *sql.DB) ([]model.Admin, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning admin: %w", err)
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

// UpdateAdminPassword updates an admin's password hash.
func UpdateAdminPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE admins SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating admin password: %w", err)
	}
	return affected(result)
}

// DeleteAdmin soft-deletes an admin.
func DeleteAdmin(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE admins SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting admin: %w", err)
	}
	return affected(result)
}
