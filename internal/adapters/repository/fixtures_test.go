package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/model"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64       { return &v }
func i64(v int64) *int64           { return &v }
func str(v string) *string         { return &v }
func at(d time.Duration) time.Time { return baseTime.Add(d) }
func atPtr(d time.Duration) *time.Time {
	t := at(d)
	return &t
}

// setupTestStore opens a migrated SQLite store under t.TempDir().
func setupTestStore(t *testing.T) (*SQLStore, *Seeder) {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test store: %v", err)
	}
	return store, NewSeeder(store)
}

// fixture is a small dataset:
//
//	Alpha: three executions, latest scored 80
//	Beta: no executions
//	Gamma: one execution that has not been scored
type fixture struct {
	alpha, beta, gamma     model.Project
	alphaOld, alphaMid     model.Execution
	alphaLatest, gammaOnly model.Execution
	results                []model.TestResult
	history                []model.ScoreHistory
}

func seedFixture(t *testing.T, sd *Seeder) fixture {
	t.Helper()
	ctx := context.Background()
	created := atPtr(-90 * 24 * time.Hour)

	f := fixture{
		alpha: model.Project{ID: uuid.New(), Name: "Alpha", Description: "first", Stack: "node-express", CreatedAt: created, UpdatedAt: created},
		beta:  model.Project{ID: uuid.New(), Name: "Beta", Stack: "python-fastapi", CreatedAt: created},
		gamma: model.Project{ID: uuid.New(), Name: "Gamma", Stack: "react-django"},
	}
	for _, p := range []model.Project{f.gamma, f.alpha, f.beta} {
		if err := sd.InsertProject(ctx, p); err != nil {
			t.Fatalf("insert project: %v", err)
		}
	}

	f.alphaOld = model.Execution{ID: uuid.New(), ProjectID: f.alpha.ID, Environment: "local", StartedAt: at(-72 * time.Hour),
		Score: f64(55), Total: i64(10), Passed: i64(5), Failed: i64(4), Errors: i64(1), Skipped: i64(0), DurationMS: f64(1200)}
	f.alphaMid = model.Execution{ID: uuid.New(), ProjectID: f.alpha.ID, Environment: "local", StartedAt: at(-48 * time.Hour),
		Score: f64(70), Total: i64(10), Passed: i64(7), Failed: i64(3), Errors: i64(0), Skipped: i64(0), DurationMS: f64(1100)}
	f.alphaLatest = model.Execution{ID: uuid.New(), ProjectID: f.alpha.ID, Environment: "staging", StartedAt: at(-1 * time.Hour),
		FinishedAt: atPtr(-59 * time.Minute), Score: f64(80), Total: i64(10), Passed: i64(8), Failed: i64(2), Errors: i64(0), Skipped: i64(0), DurationMS: f64(950.5)}
	f.gammaOnly = model.Execution{ID: uuid.New(), ProjectID: f.gamma.ID, Environment: "local", StartedAt: at(-24 * time.Hour)}
	for _, e := range []model.Execution{f.alphaOld, f.alphaMid, f.alphaLatest, f.gammaOnly} {
		if err := sd.InsertExecution(ctx, e); err != nil {
			t.Fatalf("insert execution: %v", err)
		}
	}

	f.results = []model.TestResult{
		{ID: uuid.New(), ExecutionID: f.alphaLatest.ID, Name: "sql injection", Type: "security", Status: "failed", DurationMS: f64(30), Detail: str("payload accepted"), Severity: str("high"), Group: str("owasp")},
		{ID: uuid.New(), ExecutionID: f.alphaLatest.ID, Name: "list users", Type: "api", Status: "passed", DurationMS: f64(12)},
		{ID: uuid.New(), ExecutionID: f.alphaLatest.ID, Name: "create user", Type: "api", Status: "passed"},
	}
	for _, r := range f.results {
		if err := sd.InsertTestResult(ctx, r); err != nil {
			t.Fatalf("insert test result: %v", err)
		}
	}

	for i, e := range []model.Execution{f.alphaOld, f.alphaMid, f.alphaLatest} {
		for _, runner := range []string{"api", "security"} {
			h := model.ScoreHistory{ID: uuid.New(), ExecutionID: e.ID, ProjectID: f.alpha.ID, RunnerType: runner,
				Score: e.Score, Total: i64(5), Passed: i64(int64(2 + i)), RecordedAt: atPtr(e.StartedAt.Sub(baseTime) + time.Minute)}
			if err := sd.InsertScoreHistory(ctx, h); err != nil {
				t.Fatalf("insert score history: %v", err)
			}
			f.history = append(f.history, h)
		}
	}
	return f
}
