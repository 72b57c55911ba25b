// Package repository reads audit results from the relational store.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/model"
)

// Store provides read-only access to projects, executions, test results and
// score history. List methods return an empty, non-nil slice when nothing
// matches; only by-id lookups return ErrNotFound.
type Store interface {
	// ProjectByID returns ErrNotFound if the project is unknown.
	ProjectByID(ctx context.Context, id uuid.UUID) (model.Project, error)
	// Projects returns all projects ordered by name.
	Projects(ctx context.Context) ([]model.Project, error)
	// ProjectsWithLastScore returns every project paired with the score and
	// start time of its latest execution, in a single statement.
	ProjectsWithLastScore(ctx context.Context) ([]model.ProjectSummary, error)

	// Executions returns the newest executions first, optionally filtered by project.
	Executions(ctx context.Context, projectID *uuid.UUID, limit int) ([]model.Execution, error)
	// ExecutionByID returns ErrNotFound if the execution is unknown.
	ExecutionByID(ctx context.Context, id uuid.UUID) (model.Execution, error)
	// LastExecutionForProject returns ErrNotFound when the project was never executed.
	LastExecutionForProject(ctx context.Context, projectID uuid.UUID) (model.Execution, error)

	// TestResults returns an execution's results ordered by type then name.
	TestResults(ctx context.Context, executionID uuid.UUID) ([]model.TestResult, error)
	// ScoreHistory returns a project's newest score history entries first.
	ScoreHistory(ctx context.Context, projectID uuid.UUID, limit int) ([]model.ScoreHistory, error)

	Ping(ctx context.Context) error
	Stats() sql.DBStats
}
