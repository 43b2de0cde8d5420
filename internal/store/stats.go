package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spcet/lostfound/internal/model"
)

// GetStats computes the admin dashboard counters.
func GetStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	var s model.Stats
	counters := []struct {
		dst   *int
		query string
	}{
		{&s.TotalStudents, `SELECT COUNT(*) FROM students WHERE deleted_at IS NULL`},
		{&s.LostItems, `SELECT COUNT(*) FROM items WHERE item_type = 'lost' AND deleted_at IS NULL`},
		{&s.FoundItems, `SELECT COUNT(*) FROM items WHERE item_type = 'found' AND deleted_at IS NULL`},
		{&s.ClaimedItems, `SELECT COUNT(*) FROM items WHERE status = 'claimed' AND deleted_at IS NULL`},
		{&s.DeletedItems, `SELECT COUNT(*) FROM items WHERE deleted_at IS NOT NULL`},
		{&s.PendingClaims, `SELECT COUNT(*) FROM claims WHERE status IN ('pending', 'under_review')`},
		{&s.ApprovedClaims, `SELECT COUNT(*) FROM claims WHERE status = 'approved'`},
		{&s.RejectedClaims, `SELECT COUNT(*) FROM claims WHERE status = 'rejected'`},
		{&s.UnreadMessages, `SELECT COUNT(*) FROM messages WHERE seen_at IS NULL`},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			if err := db.QueryRowContext(gctx, c.query).Scan(c.dst); err != nil {
				return fmt.Errorf("computing stats: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}
