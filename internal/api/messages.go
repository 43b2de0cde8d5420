package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// MessagesHandler handles notification endpoints.
type MessagesHandler struct {
	DB *sql.DB
}

type sendMessageRequest struct {
	RecipientID   int64  `json:"recipient_id"`
	RecipientType string `json:"recipient_type"`
	Content       string `json:"content"`
	ItemID        *int64 `json:"item_id"`
}

type unreadResponse struct {
	Count int `json:"count"`
}

// List handles GET /api/messages. Students get their inbox, which marks it
// seen; admins get every message sent.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var messages []model.Message
	var err error
	if claims.Role == model.RoleStudent {
		messages, err = store.ListMessagesForStudent(r.Context(), h.DB, claims.UserID)
	} else {
		messages, err = store.ListAllMessages(r.Context(), h.DB)
	}
	if err != nil {
		slog.Error("failed to list messages", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	jsonResponse(w, http.StatusOK, messages)
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *MessagesHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := store.CountUnread(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to count unread messages", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to count messages")
		return
	}
	jsonResponse(w, http.StatusOK, unreadResponse{Count: n})
}

// MarkRead handles POST /api/messages/{id}/read.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := store.MarkSeen(r.Context(), h.DB, GetClaims(r.Context()).UserID, id); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to mark message read", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to mark message read")
		}
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

// MarkAllRead handles POST /api/messages/mark-all-read.
func (h *MessagesHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := store.MarkAllSeen(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to mark messages read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark messages read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// React handles POST /api/messages/{id}/react?reaction=.
func (h *MessagesHandler) React(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid message id")
		return
	}
	reaction := r.URL.Query().Get("reaction")
	if !model.ValidReaction(reaction) {
		jsonError(w, http.StatusBadRequest, "reaction must be thumbs_up or thumbs_down")
		return
	}

	if err := store.SetReaction(r.Context(), h.DB, GetClaims(r.Context()).UserID, id, reaction); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to set reaction", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save reaction")
		}
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"reaction": reaction})
}

// Send handles POST /api/messages.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if req.RecipientID <= 0 || content == "" {
		jsonError(w, http.StatusBadRequest, "recipient_id and content required")
		return
	}
	if req.RecipientType != "" && req.RecipientType != model.RoleStudent {
		jsonError(w, http.StatusBadRequest, "messages can only be sent to students")
		return
	}

	student, err := store.GetStudent(r.Context(), h.DB, req.RecipientID)
	if err != nil {
		slog.Error("failed to get student", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	if student == nil || student.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "student not found")
		return
	}

	sender := claims.UserID
	msg, err := store.CreateMessage(r.Context(), h.DB, student.ID, &sender, req.ItemID, content)
	if err != nil {
		slog.Error("failed to send message", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	slog.Info("message sent", "user", claims.Name, "recipient", student.RollNumber)
	jsonResponse(w, http.StatusCreated, msg)
}
