package assistant

import (
	"context"
	"slices"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/spcet/lostfound/internal/model"
)

// Cached remembers generated questions so repeated claim attempts on the
// same item get the same questions without another model call.
type Cached struct {
	next  Assistant
	cache *gocache.Cache
}

// NewCached wraps next with a question cache.
func NewCached(next Assistant, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func questionKey(req QuestionRequest) string {
	return strings.Join([]string{req.ItemKeyword, req.Description, req.Location, req.SecretMessage}, "\x00")
}

func (c *Cached) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error) {
	key := questionKey(req)
	if v, found := c.cache.Get(key); found {
		return slices.Clone(v.([]string)), nil
	}

	questions, err := c.next.GenerateQuestions(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, questions)
	return questions, nil
}

// AnalyzeClaim is not cached; every claim is reviewed.
func (c *Cached) AnalyzeClaim(ctx context.Context, req AnalysisRequest) (*model.ClaimAnalysis, error) {
	return c.next.AnalyzeClaim(ctx, req)
}
