package api

import (
	"database/sql"
	"net/http"

	"github.com/spcet/lostfound/internal/assistant"
	"github.com/spcet/lostfound/internal/model"
)

// Config holds the router dependencies.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	// Assistant generates questions and reviews claims. Nil means the
	// template and heuristic fallback.
	Assistant assistant.Assistant
	// LoginRate is the number of login attempts allowed per address per
	// minute. Zero disables the limit.
	LoginRate int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	db := cfg.DB
	ai := cfg.Assistant
	if ai == nil {
		ai = assistant.Fallback{}
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret}
	itemsHandler := &ItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{DB: db, Assistant: ai}
	messagesHandler := &MessagesHandler{DB: db}
	studentsHandler := &StudentsHandler{DB: db}
	adminsHandler := &AdminsHandler{DB: db}
	statsHandler := &StatsHandler{DB: db}

	authMW := AuthMiddleware(cfg.JWTSecret, db)
	limiter := NewLoginLimiter(cfg.LoginRate)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSuper := RequireRole(model.RoleSuperAdmin)

	student := func(h http.HandlerFunc) http.Handler { return authMW(RequireStudent(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }
	super := func(h http.HandlerFunc) http.Handler { return authMW(requireSuper(h)) }
	anyone := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("GET /api/{$}", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("POST /api/auth/student/login", limiter.Wrap(http.HandlerFunc(authHandler.StudentLogin)))
	mux.Handle("POST /api/auth/admin/login", limiter.Wrap(http.HandlerFunc(authHandler.AdminLogin)))
	mux.HandleFunc("GET /api/items/public", itemsHandler.Public)
	mux.HandleFunc("GET /api/lobby/items", itemsHandler.Public)

	// Any authenticated user.
	mux.Handle("GET /api/auth/me", anyone(authHandler.Me))
	mux.Handle("POST /api/auth/logout", anyone(authHandler.Logout))
	mux.Handle("GET /api/items/{id}/image", anyone(itemsHandler.GetImage))
	mux.Handle("GET /api/messages", anyone(messagesHandler.List))

	// Students.
	mux.Handle("GET /api/profile", student(studentsHandler.Profile))
	mux.Handle("GET /api/items/my", student(itemsHandler.Mine))
	mux.Handle("POST /api/items", student(itemsHandler.Create))
	mux.Handle("DELETE /api/items/{id}", student(itemsHandler.Delete))
	mux.Handle("POST /api/items/{id}/found-response", student(itemsHandler.FoundResponse))
	mux.Handle("POST /api/claims/generate-questions", student(claimsHandler.GenerateQuestions))
	mux.Handle("POST /api/claims/ai-powered", student(claimsHandler.CreateAIPowered))
	mux.Handle("POST /api/claims", student(claimsHandler.Create))
	mux.Handle("GET /api/claims/my", student(claimsHandler.Mine))
	mux.Handle("POST /api/claims/{id}/answer", student(claimsHandler.Answer))
	mux.Handle("GET /api/messages/unread-count", student(messagesHandler.UnreadCount))
	mux.Handle("POST /api/messages/{id}/read", student(messagesHandler.MarkRead))
	mux.Handle("POST /api/messages/mark-all-read", student(messagesHandler.MarkAllRead))
	mux.Handle("POST /api/messages/{id}/react", student(messagesHandler.React))

	// Admins.
	mux.Handle("POST /api/auth/admin/change-password", admin(authHandler.ChangePassword))
	mux.Handle("GET /api/items", admin(itemsHandler.List))
	mux.Handle("GET /api/items/{id}", admin(itemsHandler.Get))
	mux.Handle("GET /api/items/deleted/all", admin(itemsHandler.Deleted))
	mux.Handle("POST /api/items/{id}/restore", admin(itemsHandler.Restore))
	mux.Handle("DELETE /api/items/{id}/permanent", admin(itemsHandler.Purge))
	mux.Handle("GET /api/found-responses", admin(itemsHandler.ListFoundResponses))
	mux.Handle("GET /api/claims", admin(claimsHandler.List))
	mux.Handle("GET /api/claims/{id}", admin(claimsHandler.Get))
	mux.Handle("POST /api/claims/{id}/verification-question", admin(claimsHandler.VerificationQuestion))
	mux.Handle("POST /api/claims/{id}/decision", admin(claimsHandler.Decide))
	mux.Handle("POST /api/messages", admin(messagesHandler.Send))
	mux.Handle("GET /api/students", admin(studentsHandler.List))
	mux.Handle("GET /api/students/contexts", admin(studentsHandler.Contexts))
	mux.Handle("GET /api/students/by-context", admin(studentsHandler.List))
	mux.Handle("GET /api/students/{id}", admin(studentsHandler.Get))
	mux.Handle("POST /api/students/upload-excel", admin(studentsHandler.Upload))
	mux.Handle("POST /api/students/{id}/admin-note", admin(studentsHandler.AddNote))
	mux.Handle("DELETE /api/students/{id}", admin(studentsHandler.Delete))
	mux.Handle("GET /api/stats", admin(statsHandler.Stats))
	mux.Handle("GET /api/ai/matches", admin(statsHandler.Matches))

	// Super admins.
	mux.Handle("GET /api/admins", super(adminsHandler.List))
	mux.Handle("POST /api/admins", super(adminsHandler.Create))
	mux.Handle("DELETE /api/admins/{id}", super(adminsHandler.Delete))

	return RecoverMiddleware(CORSMiddleware(LoggingMiddleware(mux)))
}
