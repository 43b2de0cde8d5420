package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spcet/lostfound/internal/db"
	"github.com/spcet/lostfound/internal/model"
)

func TestFoundResponseNotifiesOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustStudent(t, database, "21CS001", "Asha")
	finder := mustStudent(t, database, "21CS002", "Bala")
	lost := mustItem(t, database, owner.ID, model.ItemTypeLost, "Blue umbrella")

	r, err := CreateFoundResponse(ctx, database, NewFoundResponse{
		ItemID:        lost.ID,
		FinderID:      finder.ID,
		Message:       "Left it at the security desk",
		FoundLocation: "Canteen",
		FoundTime:     "Yesterday 4pm",
	})
	if err != nil {
		t.Fatalf("CreateFoundResponse: %v", err)
	}
	if r.FinderName != "Bala" || r.OwnerID != owner.ID {
		t.Errorf("expected joined finder and owner, got %+v", r)
	}

	inbox, _ := ListMessagesForStudent(ctx, database, owner.ID)
	if len(inbox) != 1 {
		t.Fatalf("expected owner to be notified, got %d messages", len(inbox))
	}
	if !strings.Contains(inbox[0].Content, "umbrella") || !strings.Contains(inbox[0].Content, "Canteen") {
		t.Errorf("unexpected notification %q", inbox[0].Content)
	}

	list, _ := ListFoundResponses(ctx, database, lost.ID)
	if len(list) != 1 {
		t.Errorf("expected 1 found response, got %d", len(list))
	}
}

func TestFoundResponseRules(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustStudent(t, database, "21CS001", "Asha")
	finder := mustStudent(t, database, "21CS002", "Bala")
	found := mustItem(t, database, owner.ID, model.ItemTypeFound, "Calculator")
	lost := mustItem(t, database, owner.ID, model.ItemTypeLost, "Blue umbrella")

	_, err := CreateFoundResponse(ctx, database, NewFoundResponse{ItemID: found.ID, FinderID: finder.ID})
	if !errors.Is(err, ErrNotLostItem) {
		t.Errorf("expected ErrNotLostItem, got %v", err)
	}
	_, err = CreateFoundResponse(ctx, database, NewFoundResponse{ItemID: lost.ID, FinderID: owner.ID})
	if !errors.Is(err, ErrOwnItem) {
		t.Errorf("expected ErrOwnItem, got %v", err)
	}

	DeleteItem(ctx, database, lost.ID, "nevermind")
	_, err = CreateFoundResponse(ctx, database, NewFoundResponse{ItemID: lost.ID, FinderID: finder.ID})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a deleted item, got %v", err)
	}
}
