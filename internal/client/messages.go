package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

// Messages lists the inbox (students, marking it seen) or every message
// sent (admins).
func (c *Client) Messages(ctx context.Context) ([]model.Message, error) {
	var msgs []model.Message
	if err := c.doJSON(ctx, http.MethodGet, "/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// UnreadCount returns the number of unseen messages for the student.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/messages/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkRead marks one message seen.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/messages/%d/read", id), nil, nil)
}

// MarkAllRead marks every message seen.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/messages/mark-all-read", nil, nil)
}

// React leaves a thumbs up or down on a message.
func (c *Client) React(ctx context.Context, id int64, reaction string) error {
	if !model.ValidReaction(reaction) {
		return &ValidationError{Field: "reaction", Message: "reaction must be thumbs_up or thumbs_down"}
	}
	path := query(fmt.Sprintf("/messages/%d/react", id), url.Values{"reaction": {reaction}})
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// SendMessage sends a student a message (admin). itemID may be nil.
func (c *Client) SendMessage(ctx context.Context, studentID int64, content string, itemID *int64) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Message: "message content is required"}
	}
	body := map[string]any{
		"recipient_id":   studentID,
		"recipient_type": model.RoleStudent,
		"content":        content,
		"item_id":        itemID,
	}
	var msg model.Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
