// Package api provides the read-only REST API for storyloop-service.
// Display surfaces consume loop state through it; nothing here mutates the
// story store.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ternarybob/storyloop/internal/config"
	"github.com/ternarybob/storyloop/internal/loop"
)

// Server represents the API server.
type Server struct {
	cfg    *config.Config
	router chi.Router
	loop   *loop.Loop
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, l *loop.Loop) *Server {
	s := &Server{
		cfg:  cfg,
		loop: l,
	}

	s.setupRouter()
	return s
}

// setupRouter configures all routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Get("/status", s.handleStatus)
	r.Route("/stories", func(r chi.Router) {
		r.Get("/", s.handleListStories)
		r.Get("/{id}", s.handleGetStory)
	})
	r.Get("/prompt", s.handlePrompt)

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
