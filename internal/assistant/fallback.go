package assistant

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spcet/lostfound/internal/claimflow"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/similarity"
)

// Confidence thresholds of the heuristic review.
const (
	HighThreshold   = 70
	MediumThreshold = 40
)

// Fallback works without a model: template questions and a token overlap
// review.
type Fallback struct{}

func (Fallback) GenerateQuestions(_ context.Context, req QuestionRequest) ([]string, error) {
	return claimflow.FallbackQuestions(req.ItemKeyword), nil
}

func (Fallback) AnalyzeClaim(_ context.Context, req AnalysisRequest) (*model.ClaimAnalysis, error) {
	claimText := claimantText(req)
	itemText := strings.TrimSpace(req.SecretMessage + " " + req.ItemDescription)
	score := similarity.Score(claimText, itemText)

	a := &model.ClaimAnalysis{
		ConfidenceBand:     Band(score),
		WhatMatched:        []string{},
		WhatDidNotMatch:    []string{},
		Inconsistencies:    []string{},
		MissingInformation: []string{},
	}

	claimed := similarity.Tokens(claimText)
	for _, t := range similarity.Tokens(itemText) {
		if slices.Contains(claimed, t) {
			a.WhatMatched = append(a.WhatMatched, t)
		} else {
			a.WhatDidNotMatch = append(a.WhatDidNotMatch, t)
		}
	}

	for _, f := range []struct{ name, value string }{
		{"item description", req.Description},
		{"identification marks", req.IdentificationMarks},
		{"where it was lost", req.LostLocation},
	} {
		if strings.TrimSpace(f.value) == "" {
			a.MissingInformation = append(a.MissingInformation, f.name)
		}
	}

	if diff := req.MatchPercentage - score; diff > 25 || diff < -25 {
		a.Inconsistencies = append(a.Inconsistencies,
			fmt.Sprintf("reported match %d%% differs from server estimate %d%%", req.MatchPercentage, score))
	}

	a.Reasoning = fmt.Sprintf("%d of %d item details appear in the claimant's answers (overlap score %d%%).",
		len(a.WhatMatched), len(a.WhatMatched)+len(a.WhatDidNotMatch), score)
	switch a.ConfidenceBand {
	case model.ConfidenceHigh:
		a.RecommendationForAdmin = "Strong match. Check the student's ID card at hand-over."
	case model.ConfidenceMedium:
		a.RecommendationForAdmin = "Partial match. Send a verification question before deciding."
	default:
		a.RecommendationForAdmin = "Weak match. Ask for more detail or reject the claim."
	}
	return a, nil
}

// Band maps an overlap score to a confidence band.
func Band(score int) string {
	switch {
	case score >= HighThreshold:
		return model.ConfidenceHigh
	case score >= MediumThreshold:
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

func claimantText(req AnalysisRequest) string {
	parts := make([]string, 0, len(req.QAData)+3)
	for _, qa := range req.QAData {
		parts = append(parts, qa.Answer)
	}
	if len(parts) == 0 {
		parts = append(parts, req.Description, req.IdentificationMarks, req.LostLocation)
	}
	return strings.Join(parts, " ")
}
