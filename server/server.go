// Package server provides HTTP server management and lifecycle handling for
// the monitoring demo service. It wires the middleware chain (request id,
// logging, metrics instrumentation, recovery, rate limiting), the route
// table, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/praaatap/monitoring-prometheus-grafana/config"
	"github.com/praaatap/monitoring-prometheus-grafana/handlers"
	"github.com/praaatap/monitoring-prometheus-grafana/logging"
	"github.com/praaatap/monitoring-prometheus-grafana/metrics"
	"github.com/praaatap/monitoring-prometheus-grafana/sysstats"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	router       chi.Router
	config       *config.Config
	metrics      *metrics.Registry
	stats        *sysstats.Container
	limiter      *RateLimiter
	computeDelay time.Duration
}

// New creates a server with the standard compute delay
func New(cfg *config.Config, reg *metrics.Registry, stats *sysstats.Container) *Server {
	return NewWithComputeDelay(cfg, reg, stats, handlers.DefaultComputeDelay)
}

// NewWithComputeDelay creates a server with a custom /compute delay,
// mainly for tests
func NewWithComputeDelay(cfg *config.Config, reg *metrics.Registry, stats *sysstats.Container, computeDelay time.Duration) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:       router,
		config:       cfg,
		metrics:      reg,
		stats:        stats,
		limiter:      NewRateLimiter(),
		computeDelay: computeDelay,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware. Instrumentation sits outside
// Recoverer so panics are recorded as 500s, and RedirectSlashes sits inside
// logging and instrumentation so trailing-slash redirects are counted and
// logged like any other completed request.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(metrics.Instrument(s.metrics, s.config.RawPathFallback))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RateLimitHandler(s.limiter))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", handlers.Home())
	s.router.Get("/user", handlers.User())
	s.router.Get("/cpu", handlers.CPUStats(s.stats))
	s.router.Get("/compute", handlers.Compute(s.metrics, s.computeDelay))
	s.router.Get("/metrics", handlers.Metrics(s.metrics))

	s.router.NotFound(handlers.NotFound())
	s.router.MethodNotAllowed(handlers.MethodNotAllowed())
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
