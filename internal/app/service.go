// Package service composes store queries with masking and classification
// into the responses served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	repository "github.com/okian/compliance/internal/adapters/repository"
	"github.com/okian/compliance/internal/domain/masking"
	"github.com/okian/compliance/internal/domain/model"
	"github.com/okian/compliance/internal/domain/scoring"
	"github.com/okian/compliance/internal/domain/types"
	"github.com/okian/compliance/pkg/logger"
	"github.com/okian/compliance/pkg/metrics"
)

// Default values for result shaping.
const (
	defaultSeverity = "info"
	defaultGroup    = ""
)

// Service implements the API dependencies for the reporting endpoints.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store  repository.Store
	mask   masking.Policy
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaskPolicy overrides the masking policy applied to failure details.
func WithMaskPolicy(p masking.Policy) Option {
	return func(s *Service) {
		s.mask = p
	}
}

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		mask:   masking.DefaultPolicy(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ListProjects returns every project with its latest score and band.
func (s *Service) ListProjects(ctx context.Context) ([]types.ProjectResponse, error) {
	const op = "service.list_projects"

	rows, err := s.store.ProjectsWithLastScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]types.ProjectResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProjectResponse(r.Project, r.LastScore, r.LastExecutionAt))
	}
	return out, nil
}

// GetProject returns one project with its latest score, if it has one.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (types.ProjectResponse, error) {
	const op = "service.get_project"

	p, err := s.resolveProject(ctx, id)
	if err != nil {
		return types.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	last, err := s.store.LastExecutionForProject(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return toProjectResponse(p, nil, nil), nil
	case err != nil:
		return types.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	started := last.StartedAt
	return toProjectResponse(p, last.Score, &started), nil
}

// ListProjectExecutions returns the project's newest executions.
func (s *Service) ListProjectExecutions(ctx context.Context, id uuid.UUID, limit int) ([]types.ExecutionResponse, error) {
	const op = "service.list_project_executions"

	p, err := s.resolveProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	es, err := s.store.Executions(ctx, &id, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]types.ExecutionResponse, 0, len(es))
	for _, e := range es {
		e.ProjectName = p.Name
		out = append(out, toExecutionResponse(e))
	}
	return out, nil
}

// ProjectHistory returns the project's score series, newest first.
func (s *Service) ProjectHistory(ctx context.Context, id uuid.UUID, limit int) ([]types.ScoreHistoryResponse, error) {
	const op = "service.project_history"

	if _, err := s.resolveProject(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hs, err := s.store.ScoreHistory(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]types.ScoreHistoryResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, toScoreHistoryResponse(h))
	}
	return out, nil
}

// ProjectTrend compares the two most recent observations of every runner
// found in the last limit history entries.
func (s *Service) ProjectTrend(ctx context.Context, id uuid.UUID, limit int) (types.TrendResponse, error) {
	const op = "service.project_trend"

	if _, err := s.resolveProject(ctx, id); err != nil {
		return types.TrendResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	hs, err := s.store.ScoreHistory(ctx, id, limit)
	if err != nil {
		return types.TrendResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	// hs is newest first, so the first two entries per runner are the ones to compare.
	byRunner := make(map[string][]model.ScoreHistory)
	for _, h := range hs {
		byRunner[h.RunnerType] = append(byRunner[h.RunnerType], h)
	}

	runners := make([]string, 0, len(byRunner))
	for r := range byRunner {
		runners = append(runners, r)
	}
	sort.Strings(runners)

	resp := types.TrendResponse{ProjectID: id, Runners: make([]types.RunnerTrend, 0, len(runners))}
	for _, r := range runners {
		series := byRunner[r]
		curr := floatOrZero(series[0].Score)
		rt := types.RunnerTrend{RunnerType: r, RecordedAt: series[0].RecordedAt, Samples: len(series)}
		if len(series) > 1 {
			rt.Trend = scoring.ComputeTrend(floatOrZero(series[1].Score), curr)
		} else {
			rt.Trend = scoring.SingleTrend(curr)
		}
		resp.Runners = append(resp.Runners, rt)
	}
	return resp, nil
}

// ListExecutions returns the newest executions, optionally for one project.
// An unknown project id yields an empty list, not an error.
func (s *Service) ListExecutions(ctx context.Context, projectID *uuid.UUID, limit int) ([]types.ExecutionResponse, error) {
	const op = "service.list_executions"

	es, err := s.store.Executions(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]types.ExecutionResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toExecutionResponse(e))
	}
	return out, nil
}

// GetExecution returns one execution.
func (s *Service) GetExecution(ctx context.Context, id uuid.UUID) (types.ExecutionResponse, error) {
	const op = "service.get_execution"

	e, err := s.resolveExecution(ctx, id)
	if err != nil {
		return types.ExecutionResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return toExecutionResponse(e), nil
}

// ExecutionResults returns the execution's test results with failure
// details masked.
func (s *Service) ExecutionResults(ctx context.Context, id uuid.UUID) ([]types.TestResultResponse, error) {
	const op = "service.execution_results"

	if _, err := s.resolveExecution(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rs, err := s.store.TestResults(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]types.TestResultResponse, 0, len(rs))
	masked := 0
	for _, r := range rs {
		detail, n := s.mask.Apply(stringOr(r.Detail, ""))
		masked += n
		out = append(out, types.TestResultResponse{
			ID:         r.ID,
			Name:       r.Name,
			Type:       r.Type,
			Status:     r.Status,
			DurationMS: floatOrZero(r.DurationMS),
			Detail:     detail,
			Severity:   stringOr(r.Severity, defaultSeverity),
			Group:      stringOr(r.Group, defaultGroup),
		})
	}
	if masked > 0 {
		metrics.RecordMaskedTokens(masked)
		s.logger.Debug(ctx, "masked tokens in test results",
			logger.String("execution_id", id.String()), logger.Int("count", masked))
	}
	return out, nil
}

// resolveProject maps a store miss to ErrProjectNotFound.
func (s *Service) resolveProject(ctx context.Context, id uuid.UUID) (model.Project, error) {
	p, err := s.store.ProjectByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Project{}, ErrProjectNotFound
	}
	return p, err
}

// resolveExecution maps a store miss to ErrExecutionNotFound.
func (s *Service) resolveExecution(ctx context.Context, id uuid.UUID) (model.Execution, error) {
	e, err := s.store.ExecutionByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Execution{}, ErrExecutionNotFound
	}
	return e, err
}
