package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/drover-sh/drover/internal/logger"
	"github.com/drover-sh/drover/pkg/store"
)

// Server provides the HTTP server for the REST API, run as a background
// service under the supervisor.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - GET /api/v1/status: Supervisor status snapshot
//   - GET /api/v1/runs: Recent run history
//
// The server supports graceful shutdown driven by context cancellation.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// Defaults are applied here to ensure the server works correctly even when
// created directly (e.g., in tests). This is idempotent with the defaults
// applied during config loading.
//
// The status provider and control store may be nil; the corresponding
// endpoints then answer 503.
func NewServer(config Config, status StatusProvider, runs store.Store) *Server {
	config.applyDefaults()

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewRouter(status, runs),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}
}

// IsDisabled reports whether the API service is administratively off.
func (s *Server) IsDisabled() bool {
	return !s.config.IsEnabled()
}

// Run starts the API HTTP server and blocks until the context is cancelled
// or an error occurs.
//
// When the context is cancelled, Run initiates graceful shutdown and
// returns its outcome.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// A fresh context: the cancelled one would abort shutdown immediately
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with Run.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.KeyError, err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
