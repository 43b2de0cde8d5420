package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/spcet/lostfound/internal/model"
)

// Config configures the OpenAI-compatible backend.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Rate is the number of model calls allowed per second.
	Rate  float64
	Burst int
}

// OpenAI talks to any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewOpenAI creates an OpenAI assistant.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	o := &OpenAI{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	if o.model == "" {
		o.model = openai.GPT4oMini
	}
	if o.timeout == 0 {
		o.timeout = 30 * time.Second
	}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	return o, nil
}

const questionPrompt = `A student wants to claim a found %s.
Finder's description: %s
Found at: %s
Private detail only the owner should know: %s

Write exactly 3 short questions that only the real owner could answer well.
Never reveal the private detail in a question.
Reply as JSON: {"questions": ["...", "...", "..."]}`

func (o *OpenAI) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]string, error) {
	prompt := fmt.Sprintf(questionPrompt, req.ItemKeyword, req.Description, req.Location, req.SecretMessage)

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := o.complete(ctx, prompt, &out); err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(out.Questions))
	for _, q := range out.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) != model.RequiredAnswers {
		return nil, fmt.Errorf("%w: got %d questions", ErrBadResponse, len(questions))
	}
	return questions, nil
}

const analysisPrompt = `Review a claim for a found %s.
Finder's description: %s
Found at: %s
Private detail only the owner should know: %s

Claimant's answers:
%s
Client match estimate: %d%%

Compare the answers with the item. Reply as JSON with the keys
confidence_band (HIGH, MEDIUM or LOW), reasoning, what_matched,
what_did_not_match, inconsistencies, missing_information (string arrays)
and recommendation_for_admin.`

func (o *OpenAI) AnalyzeClaim(ctx context.Context, req AnalysisRequest) (*model.ClaimAnalysis, error) {
	var answers strings.Builder
	for i, qa := range req.QAData {
		fmt.Fprintf(&answers, "%d. Q: %s\n   A: %s\n", i+1, qa.Question, qa.Answer)
	}
	if len(req.QAData) == 0 {
		fmt.Fprintf(&answers, "Description: %s\nMarks: %s\nLost at: %s\nWhen: %s\n",
			req.Description, req.IdentificationMarks, req.LostLocation, req.ApproximateDate)
	}

	prompt := fmt.Sprintf(analysisPrompt, req.ItemKeyword, req.ItemDescription, req.ItemLocation,
		req.SecretMessage, answers.String(), req.MatchPercentage)

	var a model.ClaimAnalysis
	if err := o.complete(ctx, prompt, &a); err != nil {
		return nil, err
	}

	a.ConfidenceBand = strings.ToUpper(strings.TrimSpace(a.ConfidenceBand))
	switch a.ConfidenceBand {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
	default:
		return nil, fmt.Errorf("%w: confidence band %q", ErrBadResponse, a.ConfidenceBand)
	}
	return &a, nil
}

// complete runs one JSON-mode chat completion and decodes the reply into v.
func (o *OpenAI) complete(ctx context.Context, prompt string, v any) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for model rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You help a campus lost and found office verify ownership claims. Always answer with a single JSON object.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices", ErrBadResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
