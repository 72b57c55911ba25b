// Package model contains domain models passed between layers.
//
// Nullable columns stay pointers here; defaulting to zero only happens when
// a response is shaped for the wire.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Project is an audited application.
type Project struct {
	ID          uuid.UUID
	Name        string // unique across projects
	Description string
	Stack       string // e.g. "node-express"
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// Execution is one audit run against one project.
type Execution struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	ProjectName string // empty when the project row is missing
	Environment string
	StartedAt   time.Time
	FinishedAt  *time.Time // nil while running or when aborted
	Score       *float64   // nil until scored
	Total       *int64
	Passed      *int64
	Failed      *int64
	Errors      *int64
	Skipped     *int64
	DurationMS  *float64
}

// TestResult is the outcome of a single check inside an execution.
type TestResult struct {
	ID          uuid.UUID
	ExecutionID uuid.UUID
	Name        string
	Type        string // runner type: "api", "security", ...
	Status      string
	DurationMS  *float64
	Detail      *string
	Severity    *string
	Group       *string
}

// ScoreHistory is one runner's score for one execution.
type ScoreHistory struct {
	ID          uuid.UUID
	ExecutionID uuid.UUID
	ProjectID   uuid.UUID
	RunnerType  string
	Score       *float64
	Total       *int64
	Passed      *int64
	RecordedAt  *time.Time
}

// ProjectSummary pairs a project with the score of its latest execution.
// LastScore and LastExecutionAt are nil when the project was never executed.
type ProjectSummary struct {
	Project         Project
	LastScore       *float64
	LastExecutionAt *time.Time
}
