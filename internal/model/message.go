package model

import "time"

// Message is a notification sent by an admin to a student.
type Message struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	SenderID    *int64     `json:"sender_id,omitempty"`
	ItemID      *int64     `json:"item_id,omitempty"`
	Content     string     `json:"content"`
	SeenAt      *time.Time `json:"seen_at,omitempty"`
	IsRead      bool       `json:"is_read"`
	Reaction    string     `json:"student_reaction,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	RecipientName string `json:"recipient_name,omitempty"`
}

// Reactions a student can leave on a message.
const (
	ReactionThumbsUp   = "thumbs_up"
	ReactionThumbsDown = "thumbs_down"
)

// ValidReaction reports whether r is a known reaction.
func ValidReaction(r string) bool {
	return r == ReactionThumbsUp || r == ReactionThumbsDown
}

// FoundResponse is a student's report that they found someone's lost item.
type FoundResponse struct {
	ID            int64     `json:"id"`
	ItemID        int64     `json:"item_id"`
	FinderID      int64     `json:"finder_id"`
	Message       string    `json:"message"`
	FoundLocation string    `json:"found_location"`
	FoundTime     string    `json:"found_time"`
	CreatedAt     time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemKeyword string `json:"item_keyword,omitempty"`
	FinderName  string `json:"finder_name,omitempty"`
	OwnerID     int64  `json:"owner_id,omitempty"`
}

// Stats holds the admin dashboard counters.
type Stats struct {
	TotalStudents  int `json:"total_students"`
	LostItems      int `json:"lost_items"`
	FoundItems     int `json:"found_items"`
	ClaimedItems   int `json:"claimed_items"`
	DeletedItems   int `json:"deleted_items"`
	PendingClaims  int `json:"pending_claims"`
	ApprovedClaims int `json:"approved_claims"`
	RejectedClaims int `json:"rejected_claims"`
	UnreadMessages int `json:"unread_messages"`
}

// Match pairs a lost item with a found item that looks like it.
type Match struct {
	LostItem   Item   `json:"lost_item"`
	FoundItem  Item   `json:"found_item"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}
