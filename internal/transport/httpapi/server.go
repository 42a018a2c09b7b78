package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/infrastructure/llm"
	"zhujian/internal/infrastructure/uploads"
	"zhujian/internal/ports"
	"zhujian/internal/usecase/analytics"
	"zhujian/internal/usecase/assistant"
	"zhujian/internal/usecase/records"
)

// Server wires the use-case services onto the /v1 HTTP surface.
type Server struct {
	records   *records.Service
	analytics *analytics.Service
	assistant *assistant.Service
	uploads   *uploads.Store
	settings  *llm.Settings
	chat      ports.ChatCompleter
	cfg       config.Config
}

func NewServer(
	recordsSvc *records.Service,
	analyticsSvc *analytics.Service,
	assistantSvc *assistant.Service,
	uploadStore *uploads.Store,
	settings *llm.Settings,
	chat ports.ChatCompleter,
	cfg config.Config,
) *Server {
	return &Server{
		records:   recordsSvc,
		analytics: analyticsSvc,
		assistant: assistantSvc,
		uploads:   uploadStore,
		settings:  settings,
		chat:      chat,
		cfg:       cfg,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/projects", s.handleListProjects)
		r.Post("/projects/ensure", s.handleEnsureProject)

		r.Route("/acceptance-records", func(r chi.Router) {
			r.Post("/", s.handleCreateAcceptance)
			r.Get("/", s.handleListAcceptance)
			r.Get("/{recordID}", s.handleGetAcceptance)
			r.Get("/{recordID}/actions", s.handleListAcceptanceActions)
			r.Post("/{recordID}/actions", s.handleAddAcceptanceAction)
			r.Post("/{recordID}/verify", s.handleVerifyAcceptance)
		})

		r.Route("/issue-reports", func(r chi.Router) {
			r.Post("/", s.handleCreateIssue)
			r.Get("/", s.handleListIssues)
			r.Get("/{issueID}", s.handleGetIssue)
			r.Get("/{issueID}/actions", s.handleListIssueActions)
			r.Post("/{issueID}/actions", s.handleAddIssueAction)
			r.Post("/{issueID}/close", s.handleCloseIssue)
		})

		r.Get("/dashboard/summary", s.handleDashboardSummary)
		r.Get("/dashboard/focus", s.handleDashboardFocus)

		r.Get("/ai/status", s.handleAIStatus)
		r.Post("/ai/chat", s.handleChat)

		r.Post("/uploads/photo", s.handleUploadPhoto)
	})

	fileServer := http.FileServer(http.Dir(s.uploads.Dir()))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		logging.Info(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.Status()),
			slog.Duration("duration", time.Since(started)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveProjectID honors an explicit project_id, then project_name, then the
// default project.
func (s *Server) resolveProjectID(r *http.Request) (uint64, error) {
	return s.records.ResolveProjectID(r.Context(), queryUint64(r, "project_id"), r.URL.Query().Get("project_name"))
}
