package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/types"
	"github.com/okian/compliance/pkg/logger"
)

// ProjectDependencies defines the interface for project read operations.
type ProjectDependencies interface {
	ListProjects(ctx context.Context) ([]types.ProjectResponse, error)
	GetProject(ctx context.Context, id uuid.UUID) (types.ProjectResponse, error)
	ListProjectExecutions(ctx context.Context, id uuid.UUID, limit int) ([]types.ExecutionResponse, error)
	ProjectHistory(ctx context.Context, id uuid.UUID, limit int) ([]types.ScoreHistoryResponse, error)
	ProjectTrend(ctx context.Context, id uuid.UUID, limit int) (types.TrendResponse, error)
}

// ProjectsHandler handles /api/projects requests.
type ProjectsHandler struct {
	deps   ProjectDependencies
	limits Limits
	logger logger.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps ProjectDependencies, limits Limits, l logger.Logger) *ProjectsHandler {
	return &ProjectsHandler{deps: deps, limits: limits, logger: l}
}

// HandleList handles GET /api/projects.
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_projects"
	ps, err := h.deps.ListProjects(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleGet handles GET /api/projects/{id}.
func (h *ProjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_project"
	id, err := parsePathID(r, "id")
	if err != nil {
		writeValidation(w, err)
		return
	}
	p, err := h.deps.GetProject(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleExecutions handles GET /api/projects/{id}/executions?limit=N.
func (h *ProjectsHandler) HandleExecutions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_project_executions"
	id, limit, ok := h.idAndLimit(w, r, h.limits.DefaultExecutions)
	if !ok {
		return
	}
	es, err := h.deps.ListProjectExecutions(r.Context(), id, limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

// HandleHistory handles GET /api/projects/{id}/history?limit=N.
func (h *ProjectsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.project_history"
	id, limit, ok := h.idAndLimit(w, r, h.limits.DefaultHistory)
	if !ok {
		return
	}
	hs, err := h.deps.ProjectHistory(r.Context(), id, limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

// HandleTrend handles GET /api/projects/{id}/trend?limit=N.
func (h *ProjectsHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.project_trend"
	id, limit, ok := h.idAndLimit(w, r, h.limits.DefaultHistory)
	if !ok {
		return
	}
	tr, err := h.deps.ProjectTrend(r.Context(), id, limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// idAndLimit validates the path id and limit, answering 422 on failure.
func (h *ProjectsHandler) idAndLimit(w http.ResponseWriter, r *http.Request, def int) (uuid.UUID, int, bool) {
	id, err := parsePathID(r, "id")
	if err != nil {
		writeValidation(w, err)
		return uuid.Nil, 0, false
	}
	limit, err := parseLimit(r, def, h.limits.Max)
	if err != nil {
		writeValidation(w, err)
		return uuid.Nil, 0, false
	}
	return id, limit, true
}
