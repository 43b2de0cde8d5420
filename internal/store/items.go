package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

// NewItem holds the fields of a student's lost/found report.
type NewItem struct {
	ItemType      string
	ItemKeyword   string
	Description   string
	Location      string
	Date          string
	Time          string
	SecretMessage string
	StudentID     int64
	Image         []byte
	ImageMime     string
}

// ItemFilter narrows ListItems. Zero values match everything active.
type ItemFilter struct {
	ItemType  string
	Status    string
	StudentID int64
	Deleted   bool
}

const itemSelect = `SELECT i.id, i.item_type, i.item_keyword, i.description, i.location, i.date, i.time,
        i.secret_message, i.student_id, i.status, i.delete_reason, i.image IS NOT NULL,
        i.created_at, i.updated_at, i.deleted_at, COALESCE(s.full_name, '')
 FROM items i LEFT JOIN students s ON s.id = i.student_id`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var reason sql.NullString
	err := row.Scan(&item.ID, &item.ItemType, &item.ItemKeyword, &item.Description, &item.Location,
		&item.Date, &item.Time, &item.SecretMessage, &item.StudentID, &item.Status, &reason,
		&item.HasImage, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt, &item.StudentName)
	if err != nil {
		return nil, err
	}
	item.DeleteReason = reason.String
	if item.HasImage {
		item.ImageURL = fmt.Sprintf("/api/items/%d/image", item.ID)
	}
	return item, nil
}

// CreateItem stores a new lost/found report.
func CreateItem(ctx context.Context, db *sql.DB, in NewItem) (*model.Item, error) {
	keyword := strings.ToLower(strings.TrimSpace(in.ItemKeyword))
	if keyword == "" {
		keyword = model.KeywordFromDescription(in.Description)
	}

	var image any
	var mime any
	if len(in.Image) > 0 {
		image, mime = in.Image, in.ImageMime
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (item_type, item_keyword, description, location, date, time,
		                    secret_message, student_id, image, image_mime)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ItemType, keyword, in.Description, in.Location, in.Date, in.Time,
		in.SecretMessage, in.StudentID, image, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := itemSelect + ` WHERE 1=1`
	var args []any

	if f.Deleted {
		query += ` AND i.deleted_at IS NOT NULL`
	} else {
		query += ` AND i.deleted_at IS NULL`
	}
	if f.ItemType != "" {
		query += ` AND i.item_type = ?`
		args = append(args, f.ItemType)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.StudentID > 0 {
		query += ` AND i.student_id = ?`
		args = append(args, f.StudentID)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListPublicItems returns active items with private fields removed.
func ListPublicItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	items, err := ListItems(ctx, db, ItemFilter{Status: model.ItemStatusActive})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = items[i].Public()
	}
	return items, nil
}

// SetItemStatus changes the status of a live item.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return affected(result)
}

// DeleteItem soft-deletes an item with the owner's reason. The previous
// status is kept so RestoreItem can bring it back.
func DeleteItem(ctx context.Context, db *sql.DB, id int64, reason string) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if item.DeletedAt != nil {
		return ErrAlreadyDeleted
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET previous_status = status, status = 'deleted', delete_reason = ?,
		        deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// RestoreItem undoes a soft delete.
func RestoreItem(ctx context.Context, db *sql.DB, id int64) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if item.DeletedAt == nil {
		return ErrNotDeleted
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET status = COALESCE(previous_status, 'active'), previous_status = NULL,
		        delete_reason = NULL, deleted_at = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("restoring item: %w", err)
	}
	return nil
}

// PurgeItem permanently removes a soft-deleted item and everything
// referencing it.
func PurgeItem(ctx context.Context, db *sql.DB, id int64) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if item.DeletedAt == nil {
		return ErrNotDeleted
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("purging item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return affected(result)
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
