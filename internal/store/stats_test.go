package store

import (
	"context"
	"testing"

	"github.com/spcet/lostfound/internal/db"
	"github.com/spcet/lostfound/internal/model"
)

func TestGetStats(t *testing.T) {
	f := newClaimFixture(t)
	ctx := context.Background()

	lost := mustItem(t, f.db, f.claimant.ID, model.ItemTypeLost, "Blue umbrella")
	DeleteItem(ctx, f.db, lost.ID, "found it")
	c := f.claim(t)
	DecideClaim(ctx, f.db, Decision{
		ClaimID: c.ID, Status: model.ClaimStatusApproved,
		Notes: "owner verified in person", AdminID: f.admin.ID, Notice: "approved",
	})

	stats, err := GetStats(ctx, f.db)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := model.Stats{
		TotalStudents:  2,
		LostItems:      0,
		FoundItems:     1,
		ClaimedItems:   1,
		DeletedItems:   1,
		PendingClaims:  0,
		ApprovedClaims: 1,
		RejectedClaims: 0,
		UnreadMessages: 1,
	}
	if *stats != want {
		t.Errorf("GetStats = %+v, want %+v", *stats, want)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	stats, err := GetStats(context.Background(), db.NewTestDB(t))
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if *stats != (model.Stats{}) {
		t.Errorf("expected zero stats, got %+v", *stats)
	}
}
