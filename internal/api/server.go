// Package api is the HTTP surface of movers: request validation, the
// aggregation endpoints, error mapping and the dashboard page.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"movers/internal/aggregate"
	"movers/internal/cache"
	"movers/internal/config"
	"movers/internal/jira"
	"movers/internal/logging"
)

// Server represents the HTTP API server
type Server struct {
	router *http.ServeMux
	server *http.Server
	addr   string
	logger *logging.Logger
	cfg    *config.Config

	client     *jira.Client
	aggregator *aggregate.Aggregator
	results    *cache.Cache
}

// NewServer creates a new HTTP server instance. client may be nil when the
// tracker connection is unconfigured; endpoints then answer with a
// configuration error instead of refusing to start.
func NewServer(addr string, cfg *config.Config, client *jira.Client, logger *logging.Logger) *Server {
	s := &Server{
		addr:    addr,
		logger:  logger,
		cfg:     cfg,
		client:  client,
		results: cache.New(cfg.Cache.MaxEntries),
		router:  http.NewServeMux(),
	}
	if client != nil {
		s.aggregator = aggregate.New(client, cfg.Aggregation, logger)
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler, used by the one-shot hosting form and
// by tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = gzhttp.GzipHandler(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = CORSMiddleware()(handler)
	handler = RequestIDMiddleware()(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}
