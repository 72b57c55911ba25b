package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	service "github.com/okian/compliance/internal/app"
	"github.com/okian/compliance/internal/domain/types"
)

// maxRunBody bounds how much of a run request body is read.
const maxRunBody = 64 << 10

// RunDependencies defines the interface for the run trigger.
type RunDependencies interface {
	TriggerRun(ctx context.Context, req types.RunRequest) service.RunOutcome
}

// RunsHandler handles POST /api/runs.
type RunsHandler struct {
	deps RunDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleTrigger answers every run request with 501. The body is decoded only
// so the rejection can be logged with what was asked for; a malformed body
// gets the same answer.
func (h *RunsHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var req types.RunRequest
	_ = json.NewDecoder(io.LimitReader(r.Body, maxRunBody)).Decode(&req)

	out := h.deps.TriggerRun(r.Context(), req)
	switch out.Status {
	case service.RunEngineUnavailable:
		writeJSON(w, http.StatusNotImplemented, types.ErrorResponse{Detail: out.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Detail: detailServer})
	}
}
