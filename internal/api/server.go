package api

import (
	"log/slog"
	"net/http"

	"github.com/caslex/caslex/internal/config"
	"github.com/caslex/caslex/internal/fetch"
	"github.com/caslex/caslex/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for caslex.
type Server struct {
	router  chi.Router
	session *render.Session
	fetcher *fetch.Client
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. session may be nil
// when browser rendering is disabled; render endpoints then answer 503.
func NewServer(session *render.Session, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		session: session,
		fetcher: fetch.NewClient(cfg.BrowserConfig.Timeout, cfg.BrowserConfig.UserAgent),
		log:     log,
		cfg:     cfg,
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
		r.Use(AuthMiddleware(s.cfg.CaslexAPIKey, s.log))

		r.Post("/api/parse/search", s.handleParseSearch)
		r.Post("/api/parse/detail", s.handleParseDetail)
		r.Post("/api/citations", s.handleCitations)

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/chunk", s.handleChunk)

		r.Post("/api/fetch", s.handleFetch)

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/search", s.handleRenderSearch)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
