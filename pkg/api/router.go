package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drover-sh/drover/internal/logger"
	"github.com/drover-sh/drover/pkg/store"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /api/v1/status - Supervisor status snapshot
//   - GET /api/v1/runs - Recent run history
func NewRouter(status StatusProvider, runs store.Store) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handler{status: status, runs: runs}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.liveness)
		r.Get("/ready", h.readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.serverStatus)
		r.Get("/runs", h.runHistory)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			logger.KeyMethod, r.Method,
			logger.KeyURI, r.URL.Path,
			logger.KeyRemoteAddr, r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			"request_id", requestID,
			logger.KeyMethod, r.Method,
			logger.KeyURI, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMS, logger.Duration(start),
		)
	})
}
