package model

import (
	"strings"
	"time"
)

// Item is a lost or found report submitted by a student.
type Item struct {
	ID            int64      `json:"id"`
	ItemType      string     `json:"item_type"`
	ItemKeyword   string     `json:"item_keyword"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
	SecretMessage string     `json:"secret_message,omitempty"`
	StudentID     int64      `json:"student_id"`
	Status        string     `json:"status"`
	DeleteReason  string     `json:"delete_reason,omitempty"`
	HasImage      bool       `json:"-"`
	ImageURL      string     `json:"image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	StudentName string `json:"student_name,omitempty"`
	IsOwner     bool   `json:"is_owner,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusReturned = "returned"
	ItemStatusDeleted  = "deleted"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusActive, ItemStatusClaimed, ItemStatusReturned, ItemStatusDeleted:
		return true
	}
	return false
}

// Claimable reports whether a student may open a claim on the item.
func (i *Item) Claimable() bool {
	return i.ItemType == ItemTypeFound && i.Status == ItemStatusActive && i.DeletedAt == nil
}

// Public returns a copy safe for listings shown to other students.
func (i Item) Public() Item {
	i.SecretMessage = ""
	i.DeleteReason = ""
	return i
}

// KeywordFromDescription picks a short noun for an item when the reporter
// did not supply one: the last word of the first clause, lower-cased.
func KeywordFromDescription(description string) string {
	clause := description
	if idx := strings.IndexAny(clause, ",.;:-("); idx > 0 {
		clause = clause[:idx]
	}
	fields := strings.Fields(strings.ToLower(clause))
	if len(fields) == 0 {
		return "item"
	}
	return strings.Trim(fields[len(fields)-1], "!?\"'")
}
