package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"   // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/compliance/internal/domain/model"
	"github.com/okian/compliance/pkg/metrics"
)

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect

	maxIdleConns    int
	maxOpenConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

// Open connects to the database, applies pool options and verifies the
// connection with a ping.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	const op = "repository.open"

	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: empty data source name", op)
	}

	db, err := sql.Open(string(dialect), prepareDSN(dialect, dsn))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := NewSQLStore(db, dialect, opts...)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	return s, nil
}

// NewSQLStore wraps an existing handle. The pool settings in opts are applied
// to db.
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:              db,
		dialect:         dialect,
		maxIdleConns:    defaultMaxIdleConns,
		maxOpenConns:    defaultMaxOpenConns,
		connMaxLifetime: defaultConnMaxLifetime,
		connMaxIdleTime: defaultConnMaxIdleTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	db.SetConnMaxIdleTime(s.connMaxIdleTime)
	return s
}

// DB exposes the underlying handle for schema management and seeding.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the SQL flavour in use.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// Close releases the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	const op = "repository.ping"
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stats returns connection pool statistics.
func (s *SQLStore) Stats() sql.DBStats { return s.db.Stats() }

const projectColumns = `p.id, p.nome, COALESCE(p.descricao, ''), COALESCE(p.stack, ''), p.created_at, p.updated_at`

const executionColumns = `e.id, e.project_id, COALESCE(p.nome, ''), e.ambiente, e.started_at, e.finished_at,
	e.score, e.total, e.passed, e.failed, e.errors, e.skipped, e.duracao_ms`

// ProjectByID returns a single project.
func (s *SQLStore) ProjectByID(ctx context.Context, id uuid.UUID) (_ model.Project, err error) {
	const op = "repository.project_by_id"
	defer s.track(op, time.Now(), &err)

	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`), id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("%s: project %s: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Projects returns every project ordered by name.
func (s *SQLStore) Projects(ctx context.Context) (_ []model.Project, err error) {
	const op = "repository.projects"
	defer s.track(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects p ORDER BY p.nome`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// projectsWithLastScoreQuery finds each project's latest start time in an
// aggregated subquery and joins executions back on (project_id, started_at)
// to recover that run's score. Projects without executions survive the outer
// join with NULL score and time. Two executions sharing the exact latest
// start time both match, so the project appears twice; e.id keeps that order
// stable.
const projectsWithLastScoreQuery = `
SELECT ` + projectColumns + `, e.score, e.started_at
FROM projects p
LEFT JOIN (
	SELECT project_id, MAX(started_at) AS max_started
	FROM executions
	GROUP BY project_id
) latest ON latest.project_id = p.id
LEFT JOIN executions e
	ON e.project_id = latest.project_id AND e.started_at = latest.max_started
ORDER BY p.nome, e.id`

// ProjectsWithLastScore returns all projects with their most recent score.
func (s *SQLStore) ProjectsWithLastScore(ctx context.Context) (_ []model.ProjectSummary, err error) {
	const op = "repository.projects_with_last_score"
	defer s.track(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, projectsWithLastScoreQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.ProjectSummary, 0)
	for rows.Next() {
		var ps model.ProjectSummary
		p := &ps.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Stack, &p.CreatedAt, &p.UpdatedAt,
			&ps.LastScore, &ps.LastExecutionAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Executions returns up to limit executions, newest first.
func (s *SQLStore) Executions(ctx context.Context, projectID *uuid.UUID, limit int) (_ []model.Execution, err error) {
	const op = "repository.executions"
	defer s.track(op, time.Now(), &err)

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidLimit, limit)
	}

	query := `SELECT ` + executionColumns + ` FROM executions e LEFT JOIN projects p ON p.id = e.project_id`
	args := make([]any, 0, 2)
	if projectID != nil {
		query += ` WHERE e.project_id = ?`
		args = append(args, *projectID)
	}
	query += ` ORDER BY e.started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Execution, 0)
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ExecutionByID returns a single execution with its project name.
func (s *SQLStore) ExecutionByID(ctx context.Context, id uuid.UUID) (_ model.Execution, err error) {
	const op = "repository.execution_by_id"
	defer s.track(op, time.Now(), &err)

	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+executionColumns+`
		FROM executions e LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.id = ?`), id)
	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Execution{}, fmt.Errorf("%s: execution %s: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return model.Execution{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// LastExecutionForProject returns the project's most recently started execution.
func (s *SQLStore) LastExecutionForProject(ctx context.Context, projectID uuid.UUID) (_ model.Execution, err error) {
	const op = "repository.last_execution_for_project"
	defer s.track(op, time.Now(), &err)

	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+executionColumns+`
		FROM executions e LEFT JOIN projects p ON p.id = e.project_id
		WHERE e.project_id = ?
		ORDER BY e.started_at DESC, e.id
		LIMIT 1`), projectID)
	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Execution{}, fmt.Errorf("%s: project %s: %w", op, projectID, ErrNotFound)
	}
	if err != nil {
		return model.Execution{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// TestResults returns the results of one execution ordered by type and name.
func (s *SQLStore) TestResults(ctx context.Context, executionID uuid.UUID) (_ []model.TestResult, err error) {
	const op = "repository.test_results"
	defer s.track(op, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, execution_id, nome, tipo, status, duracao_ms, detalhes, severidade, grupo
		FROM test_results
		WHERE execution_id = ?
		ORDER BY tipo, nome`), executionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.TestResult, 0)
	for rows.Next() {
		var r model.TestResult
		if err := rows.Scan(&r.ID, &r.ExecutionID, &r.Name, &r.Type, &r.Status, &r.DurationMS,
			&r.Detail, &r.Severity, &r.Group); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ScoreHistory returns up to limit entries for a project, newest first.
func (s *SQLStore) ScoreHistory(ctx context.Context, projectID uuid.UUID, limit int) (_ []model.ScoreHistory, err error) {
	const op = "repository.score_history"
	defer s.track(op, time.Now(), &err)

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, execution_id, project_id, runner_type, score, total, passed, recorded_at
		FROM score_history
		WHERE project_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?`), projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.ScoreHistory, 0)
	for rows.Next() {
		var h model.ScoreHistory
		if err := rows.Scan(&h.ID, &h.ExecutionID, &h.ProjectID, &h.RunnerType, &h.Score, &h.Total,
			&h.Passed, &h.RecordedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// q adapts placeholders to the store's dialect.
func (s *SQLStore) q(query string) string { return rebind(s.dialect, query) }

// track records query latency and counts failures other than not-found.
func (s *SQLStore) track(op string, start time.Time, err *error) {
	metrics.RecordStoreQuery(op, float64(time.Since(start).Microseconds())/1000.0)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (model.Project, error) {
	var p model.Project
	err := r.Scan(&p.ID, &p.Name, &p.Description, &p.Stack, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanExecution(r rowScanner) (model.Execution, error) {
	var e model.Execution
	err := r.Scan(&e.ID, &e.ProjectID, &e.ProjectName, &e.Environment, &e.StartedAt, &e.FinishedAt,
		&e.Score, &e.Total, &e.Passed, &e.Failed, &e.Errors, &e.Skipped, &e.DurationMS)
	return e, err
}

var _ Store = (*SQLStore)(nil)
