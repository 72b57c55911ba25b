// Package types contains the response shapes served to the dashboard.
//
// JSON keys follow the dashboard contract, which predates this service and
// mixes Portuguese and English names.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/scoring"
)

// ProjectResponse is a project with its most recent score.
type ProjectResponse struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"nome"`
	Description     string                  `json:"descricao"`
	Stack           string                  `json:"stack"`
	LastScore       *float64                `json:"last_score"`
	LastExecutionAt *time.Time              `json:"last_execution_at"`
	CreatedAt       *time.Time              `json:"created_at"`
	Classification  *scoring.Classification `json:"classification,omitempty"`
}

// ExecutionResponse is execution metadata with absent numerics defaulted to 0.
type ExecutionResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	ProjectName string     `json:"projeto_nome"`
	Environment string     `json:"ambiente"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	Score       float64    `json:"score"`
	Total       int64      `json:"total"`
	Passed      int64      `json:"passed"`
	Failed      int64      `json:"failed"`
	Errors      int64      `json:"errors"`
	Skipped     int64      `json:"skipped"`
	DurationMS  float64    `json:"duracao_ms"`
}

// TestResultResponse is one test outcome with its detail already masked.
type TestResultResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"nome"`
	Type       string    `json:"tipo"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duracao_ms"`
	Detail     string    `json:"detalhes"`
	Severity   string    `json:"severidade"`
	Group      string    `json:"grupo"`
}

// ScoreHistoryResponse is one point of a runner's score series.
type ScoreHistoryResponse struct {
	ExecutionID uuid.UUID  `json:"execution_id"`
	RunnerType  string     `json:"runner_type"`
	Score       float64    `json:"score"`
	Total       int64      `json:"total"`
	Passed      int64      `json:"passed"`
	RecordedAt  *time.Time `json:"recorded_at"`
}

// RunnerTrend compares the two latest observations of one runner.
type RunnerTrend struct {
	RunnerType string        `json:"runner_type"`
	RecordedAt *time.Time    `json:"recorded_at"`
	Samples    int           `json:"samples"`
	Trend      scoring.Trend `json:"trend"`
}

// TrendResponse groups runner trends for a project.
type TrendResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Runners   []RunnerTrend `json:"runners"`
}

// RunRequest is the body accepted by the run trigger.
type RunRequest struct {
	ProjectName string   `json:"project_name"`
	Types       []string `json:"types"`
	Environment string   `json:"environment"`
	Confirm     bool     `json:"confirm"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RootResponse identifies the API.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
