// Package server is the console's HTTP side: a GraphQL proxy that forwards
// browser queries to the CMS backend with the session's bearer token, plus
// health and discovery endpoints.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/storecms/internal/config"
	"github.com/me/storecms/internal/logging"
)

// Version is reported by the health and discovery endpoints.
const Version = "0.1.0"

// Server is the storecms proxy server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	api       config.APIConfig
	config    config.ServerConfig
	startTime time.Time
	upstream  *http.Client
	limiter   *clientLimiter
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.upstream = c
	}
}

// New creates a Server with all routes registered.
func New(api config.APIConfig, cfg config.ServerConfig, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logging.Component(logger, "server"),
		api:       api,
		config:    cfg,
		startTime: time.Now(),
		upstream:  &http.Client{},
	}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(rateLimitMiddleware(s.limiter))
		}
		r.Post("/api/gql", s.handleGraphQL)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
	})
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
}
