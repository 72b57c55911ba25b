// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/compliance/internal/app"
	"github.com/okian/compliance/internal/domain/types"
	"github.com/okian/compliance/pkg/logger"
	"github.com/okian/compliance/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fixed response texts shared with the dashboard.
const (
	serviceName   = "coder-compliance-api"
	apiMessage    = "Coder Compliance API"
	apiVersion    = "0.1.0"
	detailProject = "Projeto não encontrado"
	detailExec    = "Execução não encontrada"
	detailServer  = "Internal server error"

	codeValidation = "validation_error"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProjectDependencies
	ExecutionDependencies
	RunDependencies
	ReadinessChecker
}

// Limits configures list endpoint windows.
type Limits struct {
	DefaultExecutions int
	DefaultHistory    int
	Max               int
}

// DefaultLimits returns the stock limits: 20 executions, 30 history points,
// at most 100 per request.
func DefaultLimits() Limits {
	return Limits{DefaultExecutions: 20, DefaultHistory: 30, Max: 100}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	projectsHandler   *ProjectsHandler
	executionsHandler *ExecutionsHandler
	runsHandler       *RunsHandler

	logger      logger.Logger
	corsOrigins []string
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger        logger.Logger
	limits        Limits
	corsOrigins   []string
	statsProvider StatsProvider
}

// WithLogger sets the logger used for access logs and internal errors.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLimits overrides list defaults and the maximum window.
func WithLimits(l Limits) Option {
	return func(o *serverOptions) {
		if l.Max > 0 {
			o.limits.Max = l.Max
		}
		if l.DefaultExecutions > 0 {
			o.limits.DefaultExecutions = l.DefaultExecutions
		}
		if l.DefaultHistory > 0 {
			o.limits.DefaultHistory = l.DefaultHistory
		}
	}
}

// WithCORSOrigins sets the allowed browser origins. "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(o *serverOptions) {
		o.corsOrigins = origins
	}
}

// WithStatsProvider exposes connection pool statistics at /api/stats.
func WithStatsProvider(p StatsProvider) Option {
	return func(o *serverOptions) {
		o.statsProvider = p
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{
		logger:      logger.Nop(),
		limits:      DefaultLimits(),
		corsOrigins: []string{"http://localhost:5173"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:     NewHealthHandler(deps),
		statsHandler:      NewStatsHandler(o.statsProvider),
		projectsHandler:   NewProjectsHandler(deps, o.limits, o.logger),
		executionsHandler: NewExecutionsHandler(deps, o.limits, o.logger),
		runsHandler:       NewRunsHandler(deps),
		logger:            o.logger,
		corsOrigins:       o.corsOrigins,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", MetricsMiddleware(handleRoot, "root"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /api/ready", MetricsMiddleware(s.healthHandler.HandleReady, "ready"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/projects", MetricsMiddleware(s.projectsHandler.HandleList, "projects"))
	mux.HandleFunc("GET /api/projects/{id}", MetricsMiddleware(s.projectsHandler.HandleGet, "project"))
	mux.HandleFunc("GET /api/projects/{id}/executions", MetricsMiddleware(s.projectsHandler.HandleExecutions, "project_executions"))
	mux.HandleFunc("GET /api/projects/{id}/history", MetricsMiddleware(s.projectsHandler.HandleHistory, "project_history"))
	mux.HandleFunc("GET /api/projects/{id}/trend", MetricsMiddleware(s.projectsHandler.HandleTrend, "project_trend"))

	mux.HandleFunc("GET /api/executions", MetricsMiddleware(s.executionsHandler.HandleList, "executions"))
	mux.HandleFunc("GET /api/executions/{id}", MetricsMiddleware(s.executionsHandler.HandleGet, "execution"))
	mux.HandleFunc("GET /api/executions/{id}/results", MetricsMiddleware(s.executionsHandler.HandleResults, "execution_results"))

	mux.HandleFunc("POST /api/runs", MetricsMiddleware(s.runsHandler.HandleTrigger, "runs"))
}

// Handler wraps mux with CORS and access logging.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return LoggingMiddleware(s.logger, CORSMiddleware(s.corsOrigins, mux))
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.RootResponse{Message: apiMessage, Version: apiVersion})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, types.ErrorResponse{Detail: detail, Code: code})
}

// writeValidation answers 422 with the message after the kind prefix.
func writeValidation(w http.ResponseWriter, err error) {
	detail := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	writeError(w, http.StatusUnprocessableEntity, codeValidation, detail)
}

// writeFailure maps a service error to a response. Not-found errors become
// 404 with the dashboard's text; anything else is logged and hidden behind a
// generic 500.
func writeFailure(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Detail: detailProject})
	case errors.Is(err, service.ErrExecutionNotFound):
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Detail: detailExec})
	default:
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(WrapKind(op, ErrInternal, err)))
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Detail: detailServer})
	}
}
