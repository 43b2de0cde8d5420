package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spcet/lostfound/internal/model"
)

// chatServer answers every chat completion with content and counts calls.
func chatServer(t *testing.T, content string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("expected JSON response format")
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestOpenAI(t *testing.T, url string) *OpenAI {
	t.Helper()
	o, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: url, Model: "test-model"})
	require.NoError(t, err)
	return o
}

var walletQuestions = QuestionRequest{
	ItemKeyword:   "wallet",
	Description:   "black wallet",
	Location:      "Library",
	SecretMessage: "initials RK",
}

func TestOpenAIGenerateQuestions(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, `{"questions": ["What colour is it?", " What is inside? ", "Where did you lose it?"]}`, &calls)
	o := newTestOpenAI(t, server.URL)

	questions, err := o.GenerateQuestions(context.Background(), walletQuestions)
	require.NoError(t, err)
	want := []string{"What colour is it?", "What is inside?", "Where did you lose it?"}
	if diff := cmp.Diff(want, questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAIGenerateQuestionsWrongCount(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, `{"questions": ["Only one?", ""]}`, &calls)
	o := newTestOpenAI(t, server.URL)

	_, err := o.GenerateQuestions(context.Background(), walletQuestions)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestOpenAIAnalyzeClaim(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, `{"confidence_band": "high", "reasoning": "initials match",
		"what_matched": ["initials RK"], "what_did_not_match": [], "inconsistencies": [],
		"missing_information": [], "recommendation_for_admin": "approve"}`, &calls)
	o := newTestOpenAI(t, server.URL)

	a, err := o.AnalyzeClaim(context.Background(), AnalysisRequest{ItemKeyword: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, a.ConfidenceBand)
	assert.Equal(t, []string{"initials RK"}, a.WhatMatched)
}

func TestOpenAIAnalyzeClaimBadBand(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, `{"confidence_band": "certain"}`, &calls)
	o := newTestOpenAI(t, server.URL)

	_, err := o.AnalyzeClaim(context.Background(), AnalysisRequest{})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(Config{})
	assert.Error(t, err)
}

func TestFallbackAnalysis(t *testing.T) {
	req := AnalysisRequest{
		ItemDescription: "black leather wallet",
		SecretMessage:   "initials inside",
		QAData: []model.QAPair{
			{Answer: "black leather wallet"},
			{Answer: "initials inside"},
			{Answer: "library"},
		},
		Description:         "black leather wallet",
		IdentificationMarks: "initials inside",
		MatchPercentage:     10,
	}

	a, err := Fallback{}.AnalyzeClaim(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, a.ConfidenceBand)
	assert.ElementsMatch(t, []string{"black", "leather", "wallet", "initials", "inside"}, a.WhatMatched)
	assert.Empty(t, a.WhatDidNotMatch)
	assert.Equal(t, []string{"where it was lost"}, a.MissingInformation)
	assert.Len(t, a.Inconsistencies, 1)
	assert.NotEmpty(t, a.RecommendationForAdmin)
}

func TestBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, model.ConfidenceHigh},
		{70, model.ConfidenceHigh},
		{69, model.ConfidenceMedium},
		{40, model.ConfidenceMedium},
		{39, model.ConfidenceLow},
		{0, model.ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Band(tt.score), "score %d", tt.score)
	}
}

type failing struct{}

func (failing) GenerateQuestions(context.Context, QuestionRequest) ([]string, error) {
	return nil, errors.New("model down")
}

func (failing) AnalyzeClaim(context.Context, AnalysisRequest) (*model.ClaimAnalysis, error) {
	return nil, errors.New("model down")
}

func TestWithFallback(t *testing.T) {
	w := &WithFallback{Primary: failing{}, Fallback: Fallback{}}

	questions, err := w.GenerateQuestions(context.Background(), walletQuestions)
	require.NoError(t, err)
	assert.Len(t, questions, model.RequiredAnswers)
	assert.Contains(t, questions[0], "wallet")

	a, err := w.AnalyzeClaim(context.Background(), AnalysisRequest{ItemDescription: "umbrella"})
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceLow, a.ConfidenceBand)
}

func TestCachedQuestions(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, `{"questions": ["Q1?", "Q2?", "Q3?"]}`, &calls)
	c := NewCached(newTestOpenAI(t, server.URL), questionTTL)
	ctx := context.Background()

	first, err := c.GenerateQuestions(ctx, walletQuestions)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := c.GenerateQuestions(ctx, walletQuestions)
	require.NoError(t, err)
	assert.Equal(t, "Q1?", second[0])
	assert.Equal(t, int32(1), calls.Load())

	other := walletQuestions
	other.Location = "Canteen"
	_, err = c.GenerateQuestions(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewProvider(t *testing.T) {
	a, err := New("", Config{})
	require.NoError(t, err)
	assert.IsType(t, Fallback{}, a)

	_, err = New("openai", Config{})
	assert.Error(t, err)

	_, err = New("llama", Config{})
	assert.Error(t, err)
}
