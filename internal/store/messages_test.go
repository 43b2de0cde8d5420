package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spcet/lostfound/internal/db"
	"github.com/spcet/lostfound/internal/model"
)

func TestInboxMarksSeen(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := mustStudent(t, database, "21CS001", "Asha")
	admin := mustAdmin(t, database, "desk")

	sender := admin.ID
	CreateMessage(ctx, database, s.ID, &sender, nil, "first")
	CreateMessage(ctx, database, s.ID, nil, nil, "second")

	unread, err := CountUnread(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if unread != 2 {
		t.Errorf("expected 2 unread, got %d", unread)
	}

	inbox, err := ListMessagesForStudent(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("ListMessagesForStudent: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(inbox))
	}
	if inbox[0].Content != "second" {
		t.Errorf("expected newest first, got %q", inbox[0].Content)
	}
	if inbox[0].IsRead {
		t.Error("expected listing to report the pre-read state")
	}

	unread, _ = CountUnread(ctx, database, s.ID)
	if unread != 0 {
		t.Errorf("expected 0 unread after reading inbox, got %d", unread)
	}
}

func TestMarkSeenAndReaction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := mustStudent(t, database, "21CS001", "Asha")
	other := mustStudent(t, database, "21CS002", "Bala")

	m, err := CreateMessage(ctx, database, s.ID, nil, nil, "Your claim was approved")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.RecipientName != "Asha" {
		t.Errorf("expected recipient name, got %q", m.RecipientName)
	}

	if err := MarkSeen(ctx, database, other.ID, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another student's message, got %v", err)
	}
	if err := MarkSeen(ctx, database, s.ID, m.ID); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := MarkSeen(ctx, database, s.ID, m.ID); err != nil {
		t.Errorf("expected marking twice to be a no-op, got %v", err)
	}

	if err := SetReaction(ctx, database, s.ID, m.ID, "heart"); err == nil {
		t.Error("expected error for unknown reaction")
	}
	if err := SetReaction(ctx, database, s.ID, m.ID, model.ReactionThumbsUp); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}

	got, _ := GetMessage(ctx, database, m.ID)
	if !got.IsRead || got.Reaction != model.ReactionThumbsUp {
		t.Errorf("expected read message with reaction, got %+v", got)
	}

	all, _ := ListAllMessages(ctx, database)
	if len(all) != 1 {
		t.Errorf("expected 1 message in admin log, got %d", len(all))
	}
}

func TestMarkAllSeen(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := mustStudent(t, database, "21CS001", "Asha")
	for range 3 {
		CreateMessage(ctx, database, s.ID, nil, nil, "hello")
	}

	n, err := MarkAllSeen(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("MarkAllSeen: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 messages marked, got %d", n)
	}
	n, _ = MarkAllSeen(ctx, database, s.ID)
	if n != 0 {
		t.Errorf("expected nothing left to mark, got %d", n)
	}
}
