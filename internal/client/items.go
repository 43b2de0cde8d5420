package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

// NewItem is a lost or found report. Image is optional.
type NewItem struct {
	ItemType      string
	ItemKeyword   string
	Description   string
	Location      string
	Date          string
	Time          string
	SecretMessage string
	Image         io.Reader
	ImageName     string
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	ItemType string
	Status   string
}

// CreateItem reports a lost or found item.
func (c *Client) CreateItem(ctx context.Context, in NewItem) (*model.Item, error) {
	if !model.ValidItemType(in.ItemType) {
		return nil, &ValidationError{Field: "item_type", Message: "item type must be lost or found"}
	}
	if strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, &ValidationError{Field: "description", Message: "description and location are required"}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ key, value string }{
		{"item_type", in.ItemType},
		{"item_keyword", in.ItemKeyword},
		{"description", in.Description},
		{"location", in.Location},
		{"date", in.Date},
		{"time", in.Time},
		{"secret_message", in.SecretMessage},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("writing form: %w", err)
		}
	}
	if in.Image != nil {
		name := in.ImageName
		if name == "" {
			name = "photo.jpg"
		}
		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("writing form: %w", err)
		}
		if _, err := io.Copy(fw, in.Image); err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}

	var item model.Item
	if err := c.do(ctx, http.MethodPost, "/items", &buf, mw.FormDataContentType(), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) listItems(ctx context.Context, path string) ([]model.Item, error) {
	var items []model.Item
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PublicItems lists active items without secrets. It needs no session.
func (c *Client) PublicItems(ctx context.Context) ([]model.Item, error) {
	return c.listItems(ctx, "/items/public")
}

// MyItems lists the signed-in student's reports.
func (c *Client) MyItems(ctx context.Context) ([]model.Item, error) {
	return c.listItems(ctx, "/items/my")
}

// ListItems lists every item (admin).
func (c *Client) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	v := url.Values{}
	if f.ItemType != "" {
		v.Set("item_type", f.ItemType)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	return c.listItems(ctx, query("/items", v))
}

// DeletedItems lists soft-deleted items (admin).
func (c *Client) DeletedItems(ctx context.Context) ([]model.Item, error) {
	return c.listItems(ctx, "/items/deleted/all")
}

// GetItem fetches one item with its secret (admin).
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/items/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem soft-deletes the student's own item. A reason is mandatory.
func (c *Client) DeleteItem(ctx context.Context, id int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return &ValidationError{Field: "reason", Message: "a reason is required to delete an item"}
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), map[string]string{"reason": reason}, nil)
}

// RestoreItem undoes a soft delete (admin).
func (c *Client) RestoreItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/items/%d/restore", id), nil, nil)
}

// PurgeItem permanently removes a soft-deleted item (admin).
func (c *Client) PurgeItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/items/%d/permanent", id), nil, nil)
}

// ReportFound tells the owner of a lost item that it was found.
func (c *Client) ReportFound(ctx context.Context, itemID int64, message, location, when string) (*model.FoundResponse, error) {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(location) == "" {
		return nil, &ValidationError{Field: "message", Message: "message and found location are required"}
	}
	body := map[string]string{"message": message, "found_location": location, "found_time": when}
	var resp model.FoundResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/items/%d/found-response", itemID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
