package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spcet/lostfound/internal/imaging"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// ItemsHandler handles lost/found item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type deleteItemRequest struct {
	Reason string `json:"reason"`
}

type foundResponseRequest struct {
	Message       string `json:"message"`
	FoundLocation string `json:"found_location"`
	FoundTime     string `json:"found_time"`
}

// maxItemForm bounds the whole multipart body of an item report.
const maxItemForm = imaging.MaxUploadSize + 1<<20

func (h *ItemsHandler) list(w http.ResponseWriter, r *http.Request, f store.ItemFilter) {
	items, err := store.ListItems(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Public handles GET /api/items/public and GET /api/lobby/items.
func (h *ItemsHandler) Public(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListPublicItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list public items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine handles GET /api/items/my.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ItemFilter{StudentID: GetClaims(r.Context()).UserID})
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ItemFilter{ItemType: q.Get("item_type"), Status: q.Get("status")}
	if f.ItemType != "" && !model.ValidItemType(f.ItemType) {
		jsonError(w, http.StatusBadRequest, "invalid item type")
		return
	}
	if f.Status != "" && !model.ValidItemStatus(f.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	h.list(w, r, f)
}

// Deleted handles GET /api/items/deleted/all.
func (h *ItemsHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ItemFilter{Deleted: true})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items (multipart form).
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxItemForm)
	if err := r.ParseMultipartForm(maxItemForm); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	in := store.NewItem{
		ItemType:      strings.TrimSpace(r.FormValue("item_type")),
		ItemKeyword:   r.FormValue("item_keyword"),
		Description:   strings.TrimSpace(r.FormValue("description")),
		Location:      strings.TrimSpace(r.FormValue("location")),
		Date:          strings.TrimSpace(r.FormValue("date")),
		Time:          strings.TrimSpace(r.FormValue("time")),
		SecretMessage: strings.TrimSpace(r.FormValue("secret_message")),
		StudentID:     claims.UserID,
	}
	if !model.ValidItemType(in.ItemType) {
		jsonError(w, http.StatusBadRequest, "item_type must be lost or found")
		return
	}
	if in.Description == "" || in.Location == "" {
		jsonError(w, http.StatusBadRequest, "description and location required")
		return
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		photo, err := imaging.Process(file)
		if errors.Is(err, imaging.ErrTooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Image, in.ImageMime = photo.Data, photo.MIME
	case !errors.Is(err, http.ErrMissingFile):
		jsonError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item reported", "roll_number", claims.Name, "item", item.ID, "type", item.ItemType, "keyword", item.ItemKeyword)
	jsonResponse(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/items/{id} (owner soft delete).
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req deleteItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		jsonError(w, http.StatusBadRequest, "a reason is required to delete an item")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.StudentID != claims.UserID {
		jsonError(w, http.StatusForbidden, store.ErrNotOwner.Error())
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id, reason); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to delete item", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to delete item")
		}
		return
	}

	slog.Info("item deleted", "roll_number", claims.Name, "item", id, "reason", reason)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Restore handles POST /api/items/{id}/restore.
func (h *ItemsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.RestoreItem(r.Context(), h.DB, id); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to restore item", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to restore item")
		}
		return
	}

	slog.Info("item restored", "user", GetClaims(r.Context()).Name, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item restored"})
}

// Purge handles DELETE /api/items/{id}/permanent.
func (h *ItemsHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.PurgeItem(r.Context(), h.DB, id); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to purge item", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to delete item")
		}
		return
	}

	slog.Info("item permanently deleted", "user", GetClaims(r.Context()).Name, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item permanently deleted"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// FoundResponse handles POST /api/items/{id}/found-response.
func (h *ItemsHandler) FoundResponse(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req foundResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	req.FoundLocation = strings.TrimSpace(req.FoundLocation)
	if req.Message == "" || req.FoundLocation == "" {
		jsonError(w, http.StatusBadRequest, "message and found location required")
		return
	}

	resp, err := store.CreateFoundResponse(r.Context(), h.DB, store.NewFoundResponse{
		ItemID:        id,
		FinderID:      claims.UserID,
		Message:       req.Message,
		FoundLocation: req.FoundLocation,
		FoundTime:     strings.TrimSpace(req.FoundTime),
	})
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to record found response", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to record found response")
		}
		return
	}

	slog.Info("found response recorded", "roll_number", claims.Name, "item", id)
	jsonResponse(w, http.StatusCreated, resp)
}

// ListFoundResponses handles GET /api/found-responses?item_id=.
func (h *ItemsHandler) ListFoundResponses(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if v := r.URL.Query().Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		itemID = id
	}

	responses, err := store.ListFoundResponses(r.Context(), h.DB, itemID)
	if err != nil {
		slog.Error("failed to list found responses", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list found responses")
		return
	}
	jsonResponse(w, http.StatusOK, responses)
}
