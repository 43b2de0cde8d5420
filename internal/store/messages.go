package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spcet/lostfound/internal/model"
)

const messageSelect = `SELECT m.id, m.recipient_id, m.sender_id, m.item_id, m.content, m.seen_at,
        m.reaction, m.created_at, COALESCE(s.full_name, '')
 FROM messages m LEFT JOIN students s ON s.id = m.recipient_id`

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	m := &model.Message{}
	var reaction sql.NullString
	err := row.Scan(&m.ID, &m.RecipientID, &m.SenderID, &m.ItemID, &m.Content, &m.SeenAt,
		&reaction, &m.CreatedAt, &m.RecipientName)
	if err != nil {
		return nil, err
	}
	m.Reaction = reaction.String
	m.IsRead = m.SeenAt != nil
	return m, nil
}

func insertMessage(ctx context.Context, ex execer, recipientID int64, senderID, itemID *int64, content string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO messages (recipient_id, sender_id, item_id, content) VALUES (?, ?, ?, ?)`,
		recipientID, senderID, itemID, content,
	)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

// CreateMessage sends a notification to a student. senderID is nil for
// system notifications.
func CreateMessage(ctx context.Context, db *sql.DB, recipientID int64, senderID, itemID *int64, content string) (*model.Message, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO messages (recipient_id, sender_id, item_id, content) VALUES (?, ?, ?, ?)`,
		recipientID, senderID, itemID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}
	return GetMessage(ctx, db, id)
}

// GetMessage returns a message by ID.
func GetMessage(ctx context.Context, db *sql.DB, id int64) (*model.Message, error) {
	m, err := scanMessage(db.QueryRowContext(ctx, messageSelect+` WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return m, nil
}

func listMessages(ctx context.Context, db *sql.DB, where string, args ...any) ([]model.Message, error) {
	rows, err := db.QueryContext(ctx, messageSelect+where+` ORDER BY m.created_at DESC, m.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// ListMessagesForStudent returns a student's inbox. Reading the inbox marks
// every message seen; the returned messages still show what was unread
// before this call.
func ListMessagesForStudent(ctx context.Context, db *sql.DB, studentID int64) ([]model.Message, error) {
	messages, err := listMessages(ctx, db, ` WHERE m.recipient_id = ?`, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := MarkAllSeen(ctx, db, studentID); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListAllMessages returns every message for the admin message log.
func ListAllMessages(ctx context.Context, db *sql.DB) ([]model.Message, error) {
	return listMessages(ctx, db, ``)
}

// CountUnread returns how many messages a student has not seen.
func CountUnread(ctx context.Context, db *sql.DB, studentID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND seen_at IS NULL`, studentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return n, nil
}

// MarkSeen marks one of the student's messages as read. Marking a message
// that is already read is a no-op.
func MarkSeen(ctx context.Context, db *sql.DB, studentID, messageID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE messages SET seen_at = COALESCE(seen_at, CURRENT_TIMESTAMP)
		 WHERE id = ? AND recipient_id = ?`,
		messageID, studentID,
	)
	if err != nil {
		return fmt.Errorf("marking message seen: %w", err)
	}
	return affected(result)
}

// MarkAllSeen marks every unread message of a student as read and returns
// how many changed.
func MarkAllSeen(ctx context.Context, db *sql.DB, studentID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE messages SET seen_at = CURRENT_TIMESTAMP
		 WHERE recipient_id = ? AND seen_at IS NULL`,
		studentID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking messages seen: %w", err)
	}
	return result.RowsAffected()
}

// SetReaction records the student's reaction to one of their messages.
func SetReaction(ctx context.Context, db *sql.DB, studentID, messageID int64, reaction string) error {
	if !model.ValidReaction(reaction) {
		return fmt.Errorf("invalid reaction %q", reaction)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE messages SET reaction = ? WHERE id = ? AND recipient_id = ?`,
		reaction, messageID, studentID,
	)
	if err != nil {
		return fmt.Errorf("setting reaction: %w", err)
	}
	return affected(result)
}
