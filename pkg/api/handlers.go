package api

import (
	"net/http"
	"strconv"

	"github.com/drover-sh/drover/pkg/store"
	"github.com/drover-sh/drover/pkg/supervisor"
)

// StatusProvider exposes the supervisor state to the API without the API
// owning the supervisor.
type StatusProvider interface {
	State() supervisor.State
	Status() supervisor.Status
}

// handler serves the health and status endpoints.
type handler struct {
	status StatusProvider
	runs   store.Store
}

// liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *handler) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "drover",
	}))
}

// readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK once the supervisor has launched its services, and
// 503 Service Unavailable before that and during shutdown.
func (h *handler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("supervisor not attached"))
		return
	}

	state := h.status.State()
	if state != supervisor.StateRunning {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("supervisor is "+state.String()))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"state": state.String(),
	}))
}

// serverStatus handles GET /api/v1/status - full supervisor snapshot.
func (h *handler) serverStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("supervisor not attached"))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(h.status.Status()))
}

// runHistory handles GET /api/v1/runs - recent supervisor runs.
//
// Accepts an optional ?limit=N query parameter (default 20).
func (h *handler) runHistory(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("control store not attached"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
		limit = n
	}

	runs, err := h.runs.Runs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(runs))
}
