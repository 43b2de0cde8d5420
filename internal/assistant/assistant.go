// Package assistant generates claim verification questions and reviews
// submitted claims for admins.
package assistant

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spcet/lostfound/internal/model"
)

// QuestionRequest describes the found item questions are generated for.
type QuestionRequest struct {
	ItemKeyword   string `json:"item_keyword"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	SecretMessage string `json:"secret_message"`
}

// AnalysisRequest pairs a found item with the claimant's answers.
type AnalysisRequest struct {
	ItemKeyword         string
	ItemDescription     string
	ItemLocation        string
	SecretMessage       string
	Description         string
	IdentificationMarks string
	LostLocation        string
	ApproximateDate     string
	QAData              []model.QAPair
	// MatchPercentage is the score reported by the client.
	MatchPercentage int
}

// Assistant is the question generator and claim reviewer.
type Assistant interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error)
	AnalyzeClaim(ctx context.Context, req AnalysisRequest) (*model.ClaimAnalysis, error)
}

// ErrBadResponse is returned when the model's reply cannot be used.
var ErrBadResponse = errors.New("unusable assistant response")

// WithFallback uses Primary and falls back to Fallback when it fails.
type WithFallback struct {
	Primary  Assistant
	Fallback Assistant
}

func (w *WithFallback) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error) {
	questions, err := w.Primary.GenerateQuestions(ctx, req)
	if err == nil {
		return questions, nil
	}
	slog.Warn("question generation failed, using templates", "keyword", req.ItemKeyword, "error", err)
	return w.Fallback.GenerateQuestions(ctx, req)
}

func (w *WithFallback) AnalyzeClaim(ctx context.Context, req AnalysisRequest) (*model.ClaimAnalysis, error) {
	analysis, err := w.Primary.AnalyzeClaim(ctx, req)
	if err == nil {
		return analysis, nil
	}
	slog.Warn("claim analysis failed, using heuristic", "keyword", req.ItemKeyword, "error", err)
	return w.Fallback.AnalyzeClaim(ctx, req)
}
