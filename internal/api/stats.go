package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/similarity"
	"github.com/spcet/lostfound/internal/store"
)

// StatsHandler serves the admin dashboard.
type StatsHandler struct {
	DB *sql.DB
}

// MatchThreshold is the lowest confidence reported by Matches.
const MatchThreshold = 30

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to get stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Matches handles GET /api/ai/matches. An optional ?threshold= raises or
// lowers the cutoff.
func (h *StatsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	threshold := MatchThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			jsonError(w, http.StatusBadRequest, "threshold must be between 0 and 100")
			return
		}
		threshold = n
	}

	lost, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{ItemType: model.ItemTypeLost, Status: model.ItemStatusActive})
	if err != nil {
		slog.Error("failed to list lost items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute matches")
		return
	}
	found, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{ItemType: model.ItemTypeFound, Status: model.ItemStatusActive})
	if err != nil {
		slog.Error("failed to list found items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute matches")
		return
	}

	jsonResponse(w, http.StatusOK, matchItems(lost, found, threshold))
}

func matchText(i model.Item) string {
	return i.ItemKeyword + " " + i.Description
}

// matchItems pairs lost and found reports from different students whose
// descriptions score at least threshold, best first.
func matchItems(lost, found []model.Item, threshold int) []model.Match {
	matches := []model.Match{}
	for _, l := range lost {
		for _, f := range found {
			if l.StudentID == f.StudentID {
				continue
			}
			score := similarity.Score(matchText(l), matchText(f))
			if score < threshold {
				continue
			}
			matches = append(matches, model.Match{
				LostItem:   l.Public(),
				FoundItem:  f.Public(),
				Confidence: score,
				Reason:     matchReason(l, f),
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func matchReason(l, f model.Item) string {
	shared := []string{}
	found := make(map[string]bool)
	for _, t := range similarity.Tokens(matchText(f)) {
		found[t] = true
	}
	for _, t := range similarity.Tokens(matchText(l)) {
		if found[t] {
			shared = append(shared, t)
		}
	}
	if len(shared) == 0 {
		return "Descriptions overlap partially"
	}
	reason := "Shared terms: " + strings.Join(shared, ", ")
	if strings.EqualFold(l.Location, f.Location) && l.Location != "" {
		reason += fmt.Sprintf("; both reported at %s", l.Location)
	}
	return reason
}
