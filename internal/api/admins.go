package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spcet/lostfound/internal/auth"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// AdminsHandler handles admin account management (super admin only).
type AdminsHandler struct {
	DB *sql.DB
}

type createAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// List handles GET /api/admins.
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := store.ListAdmins(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list admins", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list admins")
		return
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	jsonResponse(w, http.StatusOK, admins)
}

// Create handles POST /api/admins.
func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	admin, err := store.CreateAdmin(r.Context(), h.DB, req.Username, strings.TrimSpace(req.FullName), hash, model.RoleAdmin)
	if err != nil {
		if !storeError(w, err) {
			slog.Error("failed to create admin", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to create admin")
		}
		return
	}

	slog.Info("admin created", "user", GetClaims(r.Context()).Name, "new_admin", admin.Username)
	jsonResponse(w, http.StatusCreated, admin)
}

// Delete handles DELETE /api/admins/{id}.
func (h *AdminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid admin id")
		return
	}
	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := store.DeleteAdmin(r.Context(), h.DB, id); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to delete admin", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to delete admin")
		}
		return
	}

	slog.Info("admin deleted", "user", claims.Name, "admin", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "admin deleted"})
}
