package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spcet/lostfound/internal/model"
)

// NewFoundResponse holds a finder's report about a lost item.
type NewFoundResponse struct {
	ItemID        int64
	FinderID      int64
	Message       string
	FoundLocation string
	FoundTime     string
}

const foundResponseSelect = `SELECT f.id, f.item_id, f.finder_id, f.message, f.found_location, f.found_time,
        f.created_at, i.item_keyword, s.full_name, i.student_id
 FROM found_responses f
 JOIN items i ON i.id = f.item_id
 JOIN students s ON s.id = f.finder_id`

func scanFoundResponse(row interface{ Scan(...any) error }) (*model.FoundResponse, error) {
	r := &model.FoundResponse{}
	err := row.Scan(&r.ID, &r.ItemID, &r.FinderID, &r.Message, &r.FoundLocation, &r.FoundTime,
		&r.CreatedAt, &r.ItemKeyword, &r.FinderName, &r.OwnerID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateFoundResponse records that a student found someone's lost item and
// notifies the owner in the same transaction.
func CreateFoundResponse(ctx context.Context, db *sql.DB, in NewFoundResponse) (*model.FoundResponse, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemType, status, keyword string
	var ownerID int64
	var deletedAt sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT item_type, status, item_keyword, student_id, deleted_at FROM items WHERE id = ?`,
		in.ItemID,
	).Scan(&itemType, &status, &keyword, &ownerID, &deletedAt)
	if err == sql.ErrNoRows || deletedAt.Valid {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if itemType != model.ItemTypeLost || status != model.ItemStatusActive {
		return nil, ErrNotLostItem
	}
	if ownerID == in.FinderID {
		return nil, ErrOwnItem
	}

	var finder string
	err = tx.QueryRowContext(ctx, `SELECT full_name FROM students WHERE id = ?`, in.FinderID).Scan(&finder)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting finder: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO found_responses (item_id, finder_id, message, found_location, found_time)
		 VALUES (?, ?, ?, ?, ?)`,
		in.ItemID, in.FinderID, in.Message, in.FoundLocation, in.FoundTime,
	)
	if err != nil {
		return nil, fmt.Errorf("recording found response: %w", err)
	}

	notice := fmt.Sprintf("%s reports finding your %s at %s (%s): %s",
		finder, keyword, in.FoundLocation, in.FoundTime, in.Message)
	itemID := in.ItemID
	if err := insertMessage(ctx, tx, ownerID, nil, &itemID, notice); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing found response: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetFoundResponse(ctx, db, id)
}

// GetFoundResponse returns a found response by ID.
func GetFoundResponse(ctx context.Context, db *sql.DB, id int64) (*model.FoundResponse, error) {
	r, err := scanFoundResponse(db.QueryRowContext(ctx, foundResponseSelect+` WHERE f.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found response: %w", err)
	}
	return r, nil
}

// ListFoundResponses returns found responses, optionally filtered by item.
func ListFoundResponses(ctx context.Context, db *sql.DB, itemID int64) ([]model.FoundResponse, error) {
	query := foundResponseSelect + ` WHERE 1=1`
	var args []any
	if itemID > 0 {
		query += ` AND f.item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY f.created_at DESC, f.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing found responses: %w", err)
	}
	defer rows.Close()

	responses := []model.FoundResponse{}
	for rows.Next() {
		r, err := scanFoundResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning found response: %w", err)
		}
		responses = append(responses, *r)
	}
	return responses, rows.Err()
}
