package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spcet/lostfound/internal/assistant"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	DB        *sql.DB
	Assistant assistant.Assistant
}

type simpleClaimRequest struct {
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type decisionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

// GenerateQuestions handles POST /api/claims/generate-questions.
func (h *ClaimsHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req assistant.QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemKeyword = strings.TrimSpace(req.ItemKeyword)
	if req.ItemKeyword == "" {
		req.ItemKeyword = model.KeywordFromDescription(req.Description)
	}

	questions, err := h.Assistant.GenerateQuestions(r.Context(), req)
	if err != nil {
		slog.Error("failed to generate questions", "keyword", req.ItemKeyword, "error", err)
		jsonError(w, http.StatusBadGateway, "failed to generate questions")
		return
	}
	jsonResponse(w, http.StatusOK, questionsResponse{Questions: questions})
}

// claimableItem loads an item the student may claim, answering the request
// itself when it may not.
func (h *ClaimsHandler) claimableItem(w http.ResponseWriter, r *http.Request, itemID, studentID int64) *model.Item {
	item, err := store.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create claim")
		return nil
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}
	if item.StudentID == studentID {
		jsonError(w, http.StatusBadRequest, store.ErrOwnItem.Error())
		return nil
	}
	if !item.Claimable() {
		jsonError(w, http.StatusBadRequest, store.ErrNotClaimable.Error())
		return nil
	}
	return item
}

func (h *ClaimsHandler) create(w http.ResponseWriter, r *http.Request, in store.NewClaim) {
	claim, err := store.CreateClaim(r.Context(), h.DB, in)
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to create claim", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to create claim")
		}
		return
	}

	slog.Info("claim submitted", "roll_number", GetClaims(r.Context()).Name,
		"claim", claim.ID, "item", claim.ItemID, "match", claim.MatchPercentage)
	jsonResponse(w, http.StatusCreated, claim)
}

// CreateAIPowered handles POST /api/claims/ai-powered (multipart form).
func (h *ClaimsHandler) CreateAIPowered(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	itemID, err := strconv.ParseInt(r.FormValue("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	match, err := strconv.Atoi(r.FormValue("match_percentage"))
	if err != nil || match < 0 || match > 100 {
		jsonError(w, http.StatusBadRequest, "match_percentage must be between 0 and 100")
		return
	}

	var qa []model.QAPair
	if err := json.Unmarshal([]byte(r.FormValue("qa_data")), &qa); err != nil {
		jsonError(w, http.StatusBadRequest, "qa_data must be a JSON list of question/answer pairs")
		return
	}
	if len(qa) != model.RequiredAnswers {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("qa_data must contain exactly %d answers", model.RequiredAnswers))
		return
	}
	for _, p := range qa {
		if strings.TrimSpace(p.Answer) == "" {
			jsonError(w, http.StatusBadRequest, "every question needs an answer")
			return
		}
	}

	item := h.claimableItem(w, r, itemID, claims.UserID)
	if item == nil {
		return
	}

	in := store.NewClaim{
		ItemID:              itemID,
		StudentID:           claims.UserID,
		ProductType:         strings.TrimSpace(r.FormValue("product_type")),
		Description:         strings.TrimSpace(r.FormValue("description")),
		IdentificationMarks: strings.TrimSpace(r.FormValue("identification_marks")),
		LostLocation:        strings.TrimSpace(r.FormValue("lost_location")),
		ApproximateDate:     strings.TrimSpace(r.FormValue("approximate_date")),
		MatchPercentage:     match,
		QAData:              qa,
	}

	analysis, err := h.Assistant.AnalyzeClaim(r.Context(), assistant.AnalysisRequest{
		ItemKeyword:         item.ItemKeyword,
		ItemDescription:     item.Description,
		ItemLocation:        item.Location,
		SecretMessage:       item.SecretMessage,
		Description:         in.Description,
		IdentificationMarks: in.IdentificationMarks,
		LostLocation:        in.LostLocation,
		ApproximateDate:     in.ApproximateDate,
		QAData:              qa,
		MatchPercentage:     match,
	})
	if err != nil {
		slog.Warn("claim analysis unavailable", "item", itemID, "error", err)
	}
	in.AIAnalysis = analysis

	h.create(w, r, in)
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req simpleClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.ItemID <= 0 || req.Message == "" {
		jsonError(w, http.StatusBadRequest, "item_id and message required")
		return
	}

	if h.claimableItem(w, r, req.ItemID, claims.UserID) == nil {
		return
	}
	h.create(w, r, store.NewClaim{ItemID: req.ItemID, StudentID: claims.UserID, Message: req.Message})
}

// Mine handles GET /api/claims/my.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ClaimFilter{StudentID: GetClaims(r.Context()).UserID})
}

// List handles GET /api/claims?status=.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ClaimFilter{Tab: r.URL.Query().Get("status")})
}

func (h *ClaimsHandler) list(w http.ResponseWriter, r *http.Request, f store.ClaimFilter) {
	claimList, err := store.ListClaims(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to list claims", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if claimList == nil {
		claimList = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claimList)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get claim", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Answer handles POST /api/claims/{id}/answer.
func (h *ClaimsHandler) Answer(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		jsonError(w, http.StatusBadRequest, "answer required")
		return
	}

	claim, err := store.AnswerVerificationQuestion(r.Context(), h.DB, id, claims.UserID, answer)
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to answer verification question", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save answer")
		}
		return
	}

	slog.Info("verification question answered", "roll_number", claims.Name, "claim", id)
	jsonResponse(w, http.StatusOK, claim)
}

// VerificationQuestion handles POST /api/claims/{id}/verification-question.
func (h *ClaimsHandler) VerificationQuestion(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		jsonError(w, http.StatusBadRequest, "question required")
		return
	}

	claim, err := store.AddVerificationQuestion(r.Context(), h.DB, id, question, claims.UserID)
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to add verification question", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to send question")
		}
		return
	}

	// The claimant learns about the question through their inbox.
	itemID := claim.ItemID
	sender := claims.UserID
	notice := fmt.Sprintf("An admin has a question about your claim for the %s: %s", claim.ItemKeyword, question)
	if _, err := store.CreateMessage(r.Context(), h.DB, claim.StudentID, &sender, &itemID, notice); err != nil {
		slog.Error("failed to notify claimant", "claim", id, "error", err)
	}

	slog.Info("verification question sent", "user", claims.Name, "claim", id)
	jsonResponse(w, http.StatusOK, claim)
}

// Decide handles POST /api/claims/{id}/decision.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidDecision(req.Status) {
		jsonError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}
	if err := model.ValidateDecisionNotes(req.Notes); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	notes := strings.TrimSpace(req.Notes)

	existing, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get claim", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to record decision")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	claim, err := store.DecideClaim(r.Context(), h.DB, store.Decision{
		ClaimID: id,
		Status:  req.Status,
		Notes:   notes,
		AdminID: claims.UserID,
		Notice:  decisionNotice(existing.ItemKeyword, req.Status, notes),
	})
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to record decision", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to record decision")
		}
		return
	}

	slog.Info("claim decided", "user", claims.Name, "claim", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, claim)
}

func decisionNotice(keyword, status, notes string) string {
	if status == model.ClaimStatusApproved {
		return fmt.Sprintf("Your claim for the %s has been approved. Please collect it from the Lost & Found office. Note: %s", keyword, notes)
	}
	return fmt.Sprintf("Your claim for the %s has been rejected. Reason: %s", keyword, notes)
}
