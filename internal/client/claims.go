package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spcet/lostfound/internal/claimflow"
	"github.com/spcet/lostfound/internal/model"
)

// Claim list tabs.
const (
	TabAll      = ""
	TabPending  = "pending"
	TabResolved = "resolved"
)

// GenerateQuestions asks the backend for three verification questions about
// a found item.
func (c *Client) GenerateQuestions(ctx context.Context, item model.Item) ([]string, error) {
	body := map[string]string{
		"item_keyword":   item.ItemKeyword,
		"description":    item.Description,
		"location":       item.Location,
		"secret_message": item.SecretMessage,
	}
	var resp struct {
		Questions []string `json:"questions"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/claims/generate-questions", body, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// SubmitClaim posts a confirmed claim chat as an AI-powered claim. It
// satisfies claimflow.Submitter.
func (c *Client) SubmitClaim(ctx context.Context, s claimflow.Submission) (*model.Claim, error) {
	if len(s.QAData) != model.RequiredAnswers {
		return nil, &ValidationError{Field: "qa_data", Message: fmt.Sprintf("exactly %d answers are required", model.RequiredAnswers)}
	}
	qa, err := json.Marshal(s.QAData)
	if err != nil {
		return nil, fmt.Errorf("encoding answers: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ key, value string }{
		{"item_id", strconv.FormatInt(s.ItemID, 10)},
		{"product_type", s.ProductType},
		{"description", s.Description},
		{"identification_marks", s.IdentificationMarks},
		{"lost_location", s.LostLocation},
		{"approximate_date", s.ApproximateDate},
		{"match_percentage", strconv.Itoa(s.MatchPercentage)},
		{"qa_data", string(qa)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("writing form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("writing form: %w", err)
	}

	var claim model.Claim
	if err := c.do(ctx, http.MethodPost, "/claims/ai-powered", &buf, mw.FormDataContentType(), &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// CreateClaim files a plain claim with a free-text message.
func (c *Client) CreateClaim(ctx context.Context, itemID int64, message string) (*model.Claim, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message", Message: "a message is required"}
	}
	var claim model.Claim
	body := map[string]any{"item_id": itemID, "message": message}
	if err := c.doJSON(ctx, http.MethodPost, "/claims", body, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (c *Client) listClaims(ctx context.Context, path string) ([]model.Claim, error) {
	var claims []model.Claim
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// MyClaims lists the signed-in student's claims.
func (c *Client) MyClaims(ctx context.Context) ([]model.Claim, error) {
	return c.listClaims(ctx, "/claims/my")
}

// ListClaims lists claims in a tab (admin). tab may also be an exact status.
func (c *Client) ListClaims(ctx context.Context, tab string) ([]model.Claim, error) {
	v := url.Values{}
	if tab != TabAll {
		v.Set("status", tab)
	}
	return c.listClaims(ctx, query("/claims", v))
}

// GetClaim fetches one claim (admin).
func (c *Client) GetClaim(ctx context.Context, id int64) (*model.Claim, error) {
	var claim model.Claim
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/claims/%d", id), nil, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// AskVerification sends the claimant a follow-up question (admin).
func (c *Client) AskVerification(ctx context.Context, claimID int64, question string) (*model.Claim, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &ValidationError{Field: "question", Message: "a question is required"}
	}
	var claim model.Claim
	path := fmt.Sprintf("/claims/%d/verification-question", claimID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"question": question}, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// AnswerVerification answers the oldest open question on the student's claim.
func (c *Client) AnswerVerification(ctx context.Context, claimID int64, answer string) (*model.Claim, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, &ValidationError{Field: "answer", Message: "an answer is required"}
	}
	var claim model.Claim
	path := fmt.Sprintf("/claims/%d/answer", claimID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"answer": answer}, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// Decide approves or rejects a claim (admin). Notes are validated before
// anything is sent.
func (c *Client) Decide(ctx context.Context, claimID int64, status, notes string) (*model.Claim, error) {
	if !model.ValidDecision(status) {
		return nil, &ValidationError{Field: "status", Message: "status must be approved or rejected"}
	}
	if err := model.ValidateDecisionNotes(notes); err != nil {
		return nil, &ValidationError{Field: "notes", Message: err.Error()}
	}

	var claim model.Claim
	body := map[string]string{"status": status, "notes": strings.TrimSpace(notes)}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/claims/%d/decision", claimID), body, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}
