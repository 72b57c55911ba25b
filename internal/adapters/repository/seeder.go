package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/compliance/internal/domain/model"
)

// Seeder writes fixture rows. It is deliberately separate from Store: the
// API never writes, and only development tooling and tests link this type.
type Seeder struct {
	db      *sql.DB
	dialect Dialect
}

// NewSeeder returns a Seeder sharing the store's connection pool.
func NewSeeder(s *SQLStore) *Seeder {
	return &Seeder{db: s.db, dialect: s.dialect}
}

// Reset deletes every row, children first.
func (sd *Seeder) Reset(ctx context.Context) error {
	const op = "repository.seeder.reset"
	for _, table := range []string{"score_history", "test_results", "executions", "projects"} {
		if _, err := sd.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%s: %s: %w", op, table, err)
		}
	}
	return nil
}

// InsertProject writes a project row.
func (sd *Seeder) InsertProject(ctx context.Context, p model.Project) error {
	const op = "repository.seeder.insert_project"
	_, err := sd.db.ExecContext(ctx, rebind(sd.dialect, `INSERT INTO projects
		(id, nome, descricao, stack, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.Stack, utc(p.CreatedAt), utc(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InsertExecution writes an execution row. ProjectName is ignored.
func (sd *Seeder) InsertExecution(ctx context.Context, e model.Execution) error {
	const op = "repository.seeder.insert_execution"
	_, err := sd.db.ExecContext(ctx, rebind(sd.dialect, `INSERT INTO executions
		(id, project_id, ambiente, started_at, finished_at, score, total, passed, failed, errors, skipped, duracao_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.ProjectID, e.Environment, e.StartedAt.UTC(), utc(e.FinishedAt), e.Score,
		e.Total, e.Passed, e.Failed, e.Errors, e.Skipped, e.DurationMS)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InsertTestResult writes a test result row.
func (sd *Seeder) InsertTestResult(ctx context.Context, r model.TestResult) error {
	const op = "repository.seeder.insert_test_result"
	_, err := sd.db.ExecContext(ctx, rebind(sd.dialect, `INSERT INTO test_results
		(id, execution_id, nome, tipo, status, duracao_ms, detalhes, severidade, grupo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.ExecutionID, r.Name, r.Type, r.Status, r.DurationMS, r.Detail, r.Severity, r.Group)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InsertScoreHistory writes a score history row.
func (sd *Seeder) InsertScoreHistory(ctx context.Context, h model.ScoreHistory) error {
	const op = "repository.seeder.insert_score_history"
	_, err := sd.db.ExecContext(ctx, rebind(sd.dialect, `INSERT INTO score_history
		(id, execution_id, project_id, runner_type, score, total, passed, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		h.ID, h.ExecutionID, h.ProjectID, h.RunnerType, h.Score, h.Total, h.Passed, utc(h.RecordedAt))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// utc normalizes timestamps so SQLite text ordering matches time ordering.
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
