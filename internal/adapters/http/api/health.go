package api

import (
	"context"
	"net/http"

	"github.com/okian/compliance/internal/domain/types"
)

// ReadinessChecker reports whether the backing store answers.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checker ReadinessChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth handles GET /api/health. It is a liveness probe and never
// touches the database.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Service: serviceName})
}

// HandleReady handles GET /api/ready: 200 when the store answers a ping,
// 503 otherwise.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unavailable", Service: serviceName})
		return
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Service: serviceName})
}
