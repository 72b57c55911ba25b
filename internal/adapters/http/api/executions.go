package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/types"
	"github.com/okian/compliance/pkg/logger"
)

// ExecutionDependencies defines the interface for execution read operations.
type ExecutionDependencies interface {
	ListExecutions(ctx context.Context, projectID *uuid.UUID, limit int) ([]types.ExecutionResponse, error)
	GetExecution(ctx context.Context, id uuid.UUID) (types.ExecutionResponse, error)
	ExecutionResults(ctx context.Context, id uuid.UUID) ([]types.TestResultResponse, error)
}

// ExecutionsHandler handles /api/executions requests.
type ExecutionsHandler struct {
	deps   ExecutionDependencies
	limits Limits
	logger logger.Logger
}

// NewExecutionsHandler creates a new executions handler.
func NewExecutionsHandler(deps ExecutionDependencies, limits Limits, l logger.Logger) *ExecutionsHandler {
	return &ExecutionsHandler{deps: deps, limits: limits, logger: l}
}

// HandleList handles GET /api/executions?project_id=&limit=N.
func (h *ExecutionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_executions"
	projectID, err := parseOptionalID(r, "project_id")
	if err != nil {
		writeValidation(w, err)
		return
	}
	limit, err := parseLimit(r, h.limits.DefaultExecutions, h.limits.Max)
	if err != nil {
		writeValidation(w, err)
		return
	}
	es, err := h.deps.ListExecutions(r.Context(), projectID, limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

// HandleGet handles GET /api/executions/{id}.
func (h *ExecutionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_execution"
	id, err := parsePathID(r, "id")
	if err != nil {
		writeValidation(w, err)
		return
	}
	e, err := h.deps.GetExecution(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleResults handles GET /api/executions/{id}/results.
func (h *ExecutionsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.execution_results"
	id, err := parsePathID(r, "id")
	if err != nil {
		writeValidation(w, err)
		return
	}
	rs, err := h.deps.ExecutionResults(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}
