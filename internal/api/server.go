package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/textblock/internal/block"
	"github.com/dgallion1/textblock/internal/config"
	"github.com/dgallion1/textblock/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for textblock.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	blocks       *block.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		blocks:       orch.Blocks(),
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
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/fonts", s.handleFonts)
		r.Get("/api/stats", s.handleStats)

		r.Post("/api/blocks", s.handleCreateBlock)
		r.Route("/api/blocks/{blockID}", func(r chi.Router) {
			r.Use(s.blockCtx)
			r.Get("/", s.handleGetBlock)
			r.Delete("/", s.handleDeleteBlock)
			r.Get("/page", s.handlePage)
			r.Put("/content", s.handleContent)
			r.Post("/selection", s.handleSelection)
			r.Post("/blur", s.handleBlur)
			r.Post("/format", s.handleFormat)
			r.Post("/font", s.handleFont)
			r.Post("/color", s.handleColor)
			r.Get("/export", s.handleExport)
		})

		r.Post("/api/imports", s.handleImport)
		r.Get("/api/imports/{jobID}/status", s.handleImportStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
