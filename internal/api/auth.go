package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spcet/lostfound/internal/auth"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/roster"
	"github.com/spcet/lostfound/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type studentLoginRequest struct {
	RollNumber string `json:"roll_number"`
	DOB        string `json:"dob"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
	Role  string `json:"role"`
}

type meResponse struct {
	User any    `json:"user"`
	Role string `json:"role"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// StudentLogin handles POST /api/auth/student/login.
func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req studentLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.RollNumber) == "" || strings.TrimSpace(req.DOB) == "" {
		jsonError(w, http.StatusBadRequest, "roll number and date of birth required")
		return
	}

	student, err := store.GetStudentByRoll(r.Context(), h.DB, req.RollNumber)
	if err != nil {
		slog.Error("failed to look up student", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	dob, err := roster.NormalizeDOB(req.DOB)
	if student == nil || err != nil || dob != student.DOB {
		slog.Warn("student login failed", "roll_number", req.RollNumber, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid roll number or date of birth")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, student.ID, student.RollNumber, model.RoleStudent)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("student logged in", "roll_number", student.RollNumber)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: student, Role: model.RoleStudent})
}

// AdminLogin handles POST /api/auth/admin/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	admin, err := store.GetAdminByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		slog.Error("failed to look up admin", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if admin == nil || !auth.CheckPassword(admin.PasswordHash, req.Password) {
		slog.Warn("admin login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, admin.ID, admin.Username, admin.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("admin logged in", "user", admin.Username, "role", admin.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: admin, Role: admin.Role})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var user any
	var err error
	if claims.Role == model.RoleStudent {
		var s *model.Student
		s, err = store.GetStudent(r.Context(), h.DB, claims.UserID)
		if s != nil && s.DeletedAt == nil {
			user = s
		}
	} else {
		var a *model.Admin
		a, err = store.GetAdmin(r.Context(), h.DB, claims.UserID)
		if a != nil && a.DeletedAt == nil {
			user = a
		}
	}
	if err != nil {
		slog.Error("failed to load account", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	jsonResponse(w, http.StatusOK, meResponse{User: user, Role: claims.Role})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		slog.Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	slog.Info("logged out", "user", claims.Name, "role", claims.Role)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles POST /api/auth/admin/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "old and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, err := store.GetAdmin(r.Context(), h.DB, claims.UserID)
	if err != nil || admin == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckPassword(admin.PasswordHash, req.OldPassword) {
		jsonError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateAdminPassword(r.Context(), h.DB, admin.ID, hash); err != nil {
		slog.Error("failed to update password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("admin changed own password", "user", claims.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
