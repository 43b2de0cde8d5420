package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// errorBody is the error payload. Detail repeats Error for clients that
// read either key.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message, Detail: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// storeError answers with the status matching a store or model error. It
// returns false for unexpected errors, which the caller logs.
func storeError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrNotOwner):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrDuplicateClaim),
		errors.Is(err, store.ErrClaimClosed),
		errors.Is(err, store.ErrDuplicateAccount),
		errors.Is(err, store.ErrAlreadyDeleted):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrOwnItem),
		errors.Is(err, store.ErrNotClaimable),
		errors.Is(err, store.ErrNoOpenQuestion),
		errors.Is(err, store.ErrNotLostItem),
		errors.Is(err, store.ErrNotDeleted),
		errors.Is(err, model.ErrNotesMissing),
		errors.Is(err, model.ErrNotesTooShort):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		return false
	}
	return true
}
