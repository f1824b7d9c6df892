package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/doclink/internal/config"
	"github.com/dgallion1/doclink/internal/metrics"
	"github.com/dgallion1/doclink/internal/pipeline"
	"github.com/dgallion1/doclink/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for doclink.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. m may be nil, in which
// case /metrics is not served.
func NewServer(orch *pipeline.Orchestrator, sessions *session.Store, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/linkify", s.handleLinkify)
		r.Post("/api/linkify/text", s.handleLinkifyText)
		r.Get("/api/linkify/{jobID}/status", s.handleLinkifyStatus)
		r.Get("/api/linkify/{jobID}/result", s.handleLinkifyResult)

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Post("/{sessionID}/edits", s.handleSessionEdits)
			r.Delete("/{sessionID}", s.handleDeleteSession)
		})

		r.Get("/api/stats/jobs", s.handleJobStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
