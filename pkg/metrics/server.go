package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drover-sh/drover/internal/logger"
)

// Server serves the Prometheus scrape endpoint as a background service.
//
// It implements the service contract: Run blocks until the context is
// cancelled, then shuts the HTTP server down gracefully. When metrics are
// disabled the service reports itself disabled and is never started.
type Server struct {
	port         int
	enabled      bool
	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer creates the metrics HTTP service listening on the given port.
func NewServer(port int, enabled bool) *Server {
	return &Server{
		port:    port,
		enabled: enabled,
	}
}

// IsDisabled reports whether metrics serving is administratively off.
func (s *Server) IsDisabled() bool {
	return !s.enabled
}

// Run starts the metrics endpoint and blocks until the context is cancelled
// or the server fails.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "port", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("metrics server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// stop initiates graceful shutdown of the metrics server.
func (s *Server) stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("metrics server shutdown error: %w", err)
			logger.Error("metrics server shutdown error", logger.KeyError, err)
		} else {
			logger.Info("metrics server stopped gracefully")
		}
	})
	return shutdownErr
}
