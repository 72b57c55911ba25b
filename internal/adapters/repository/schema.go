package repository

import (
	"context"
	"fmt"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	nome TEXT NOT NULL UNIQUE,
	descricao TEXT DEFAULT '',
	stack TEXT DEFAULT '',
	created_at TIMESTAMP,
	updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	ambiente TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	score REAL,
	total INTEGER,
	passed INTEGER,
	failed INTEGER,
	errors INTEGER,
	skipped INTEGER,
	duracao_ms REAL
);

CREATE INDEX IF NOT EXISTS idx_executions_project_started ON executions(project_id, started_at);
CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);

CREATE TABLE IF NOT EXISTS test_results (
	id TEXT PRIMARY KEY,
	execution_id TEXT NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
	nome TEXT NOT NULL,
	tipo TEXT NOT NULL,
	status TEXT NOT NULL,
	duracao_ms REAL,
	detalhes TEXT,
	severidade TEXT,
	grupo TEXT
);

CREATE INDEX IF NOT EXISTS idx_test_results_execution ON test_results(execution_id);

CREATE TABLE IF NOT EXISTS score_history (
	id TEXT PRIMARY KEY,
	execution_id TEXT NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	runner_type TEXT NOT NULL,
	score REAL,
	total INTEGER,
	passed INTEGER,
	recorded_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_score_history_project_recorded ON score_history(project_id, recorded_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id UUID PRIMARY KEY,
	nome VARCHAR(100) NOT NULL UNIQUE,
	descricao TEXT DEFAULT '',
	stack VARCHAR(50) DEFAULT '',
	created_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS executions (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	ambiente VARCHAR(50) NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	score DOUBLE PRECISION,
	total INTEGER,
	passed INTEGER,
	failed INTEGER,
	errors INTEGER,
	skipped INTEGER,
	duracao_ms DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_executions_project_started ON executions(project_id, started_at);
CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);

CREATE TABLE IF NOT EXISTS test_results (
	id UUID PRIMARY KEY,
	execution_id UUID NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
	nome VARCHAR(200) NOT NULL,
	tipo VARCHAR(50) NOT NULL,
	status VARCHAR(20) NOT NULL,
	duracao_ms DOUBLE PRECISION,
	detalhes TEXT,
	severidade VARCHAR(20),
	grupo VARCHAR(100)
);

CREATE INDEX IF NOT EXISTS idx_test_results_execution ON test_results(execution_id);

CREATE TABLE IF NOT EXISTS score_history (
	id UUID PRIMARY KEY,
	execution_id UUID NOT NULL REFERENCES executions(id) ON DELETE CASCADE,
	project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	runner_type VARCHAR(50) NOT NULL,
	score DOUBLE PRECISION,
	total INTEGER,
	passed INTEGER,
	recorded_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_score_history_project_recorded ON score_history(project_id, recorded_at);
`

// Migrate creates the tables and indexes if they do not exist. It never
// alters existing tables, so it is safe against a database populated by the
// audit engine.
func (s *SQLStore) Migrate(ctx context.Context) error {
	const op = "repository.migrate"

	schema := sqliteSchema
	if s.dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
