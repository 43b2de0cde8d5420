package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/roster"
	"github.com/spcet/lostfound/internal/store"
)

// StudentsHandler handles roster endpoints.
type StudentsHandler struct {
	DB *sql.DB
}

type noteRequest struct {
	Note string `json:"note"`
}

type uploadResponse struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// maxRosterUpload bounds an uploaded roster workbook.
const maxRosterUpload = 10 << 20

// List handles GET /api/students and GET /api/students/by-context.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	students, err := store.ListStudents(r.Context(), h.DB, q.Get("department"), q.Get("year"))
	if err != nil {
		slog.Error("failed to list students", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list students")
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	jsonResponse(w, http.StatusOK, students)
}

// Contexts handles GET /api/students/contexts.
func (h *StudentsHandler) Contexts(w http.ResponseWriter, r *http.Request) {
	contexts, err := store.ListStudentContexts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list student contexts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list student groups")
		return
	}
	if contexts == nil {
		contexts = []model.StudentContext{}
	}
	jsonResponse(w, http.StatusOK, contexts)
}

func (h *StudentsHandler) respondStudent(w http.ResponseWriter, r *http.Request, id int64) {
	student, err := store.GetStudent(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get student", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get student")
		return
	}
	if student == nil || student.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "student not found")
		return
	}
	jsonResponse(w, http.StatusOK, student)
}

// Get handles GET /api/students/{id}.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	h.respondStudent(w, r, id)
}

// Profile handles GET /api/profile.
func (h *StudentsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.respondStudent(w, r, GetClaims(r.Context()).UserID)
}

// Upload handles POST /api/students/upload-excel.
func (h *StudentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRosterUpload)
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Excel file required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		jsonError(w, http.StatusBadRequest, "only .xlsx files are supported")
		return
	}

	parsed, err := roster.Parse(file)
	if errors.Is(err, roster.ErrNoRows) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("could not read roster: %v", err))
		return
	}

	res, err := store.ImportStudents(r.Context(), h.DB, parsed.Students)
	if err != nil {
		slog.Error("failed to import students", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to import students")
		return
	}

	resp := uploadResponse{
		Added:   res.Added,
		Skipped: res.Skipped + len(parsed.Skipped),
		Errors:  append(parsed.Skipped, res.Errors...),
	}
	resp.Message = fmt.Sprintf("Imported %d students, skipped %d", resp.Added, resp.Skipped)

	slog.Info("roster imported", "user", claims.Name, "file", header.Filename, "added", resp.Added, "skipped", resp.Skipped)
	jsonResponse(w, http.StatusOK, resp)
}

// AddNote handles POST /api/students/{id}/admin-note.
func (h *StudentsHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		jsonError(w, http.StatusBadRequest, "note required")
		return
	}

	if err := store.AddStudentNote(r.Context(), h.DB, id, note, claims.Name); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to add student note", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to add note")
		}
		return
	}

	slog.Info("student note added", "user", claims.Name, "student", id)
	h.respondStudent(w, r, id)
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	if err := store.DeleteStudent(r.Context(), h.DB, id); err != nil {
		if !storeError(w, err) {
			slog.Error("failed to delete student", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to delete student")
		}
		return
	}

	slog.Info("student deleted", "user", GetClaims(r.Context()).Name, "student", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "student deleted"})
}
