// Package seed fills a store with demo audit data for local development.
//
// It stands in for the external audit engine: projects get a few weeks of
// executions whose scores drift upward, per-test results for the api and
// security runners, and one score history row per runner and execution.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/model"
	"github.com/okian/compliance/pkg/logger"
)

// ErrInvalidConfig is returned for unusable generator settings.
var ErrInvalidConfig = errors.New("invalid seed config")

// Writer receives generated rows. repository.Seeder implements it.
type Writer interface {
	Reset(ctx context.Context) error
	InsertProject(ctx context.Context, p model.Project) error
	InsertExecution(ctx context.Context, e model.Execution) error
	InsertTestResult(ctx context.Context, r model.TestResult) error
	InsertScoreHistory(ctx context.Context, h model.ScoreHistory) error
}

// Config controls generation.
type Config struct {
	Projects      []ProjectSpec
	MinExecutions int
	MaxExecutions int
	SpanDays      int // executions are spread over this many days before Now
	Environment   string
	Now           time.Time
	Seed          uint64 // same seed, same data
}

// DefaultConfig mirrors the dashboard demo: three projects, 5 to 8
// executions each over about a month.
func DefaultConfig() Config {
	return Config{
		Projects:      DemoProjects,
		MinExecutions: 5,
		MaxExecutions: 8,
		SpanDays:      30,
		Environment:   "local",
		Now:           time.Now().UTC(),
		Seed:          uint64(time.Now().UnixNano()),
	}
}

// Summary counts what was written.
type Summary struct {
	Projects   int
	Executions int
	Results    int
	History    int
}

// Generator produces demo rows.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	logger logger.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the progress logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New validates cfg and returns a Generator.
func New(cfg Config, opts ...Option) (*Generator, error) {
	switch {
	case len(cfg.Projects) == 0:
		return nil, fmt.Errorf("%w: no projects", ErrInvalidConfig)
	case cfg.MinExecutions < 1 || cfg.MaxExecutions < cfg.MinExecutions:
		return nil, fmt.Errorf("%w: executions range %d..%d", ErrInvalidConfig, cfg.MinExecutions, cfg.MaxExecutions)
	case cfg.SpanDays < 1:
		return nil, fmt.Errorf("%w: span_days must be positive", ErrInvalidConfig)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	g := &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Run wipes w and writes a fresh data set.
func (g *Generator) Run(ctx context.Context, w Writer) (Summary, error) {
	const op = "seed.run"
	var sum Summary

	if err := w.Reset(ctx); err != nil {
		return sum, fmt.Errorf("%s: %w", op, err)
	}

	for _, spec := range g.cfg.Projects {
		created := g.cfg.Now.AddDate(0, 0, -g.cfg.SpanDays-1)
		p := model.Project{
			ID:          uuid.New(),
			Name:        spec.Name,
			Description: spec.Description,
			Stack:       spec.Stack,
			CreatedAt:   &created,
			UpdatedAt:   &created,
		}
		if err := w.InsertProject(ctx, p); err != nil {
			return sum, fmt.Errorf("%s: %w", op, err)
		}
		sum.Projects++

		n := g.cfg.MinExecutions + g.rng.IntN(g.cfg.MaxExecutions-g.cfg.MinExecutions+1)
		for i := range n {
			results, history, err := g.execution(ctx, w, p, i, n)
			if err != nil {
				return sum, fmt.Errorf("%s: %s: %w", op, p.Name, err)
			}
			sum.Executions++
			sum.Results += results
			sum.History += history
		}
		g.logger.Info(ctx, "project seeded", logger.String("project", p.Name), logger.Int("executions", n))
	}
	return sum, nil
}

// runnerTally accumulates one runner's outcome inside an execution.
type runnerTally struct {
	runner string
	total  int64
	passed int64
}

func (g *Generator) execution(ctx context.Context, w Writer, p model.Project, i, n int) (int, int, error) {
	// Spread evenly across the span, oldest first, with a daytime hour.
	step := float64(g.cfg.SpanDays) / float64(n)
	daysAgo := float64(n-i) * step
	started := g.cfg.Now.Add(-time.Duration(daysAgo * float64(24*time.Hour))).
		Truncate(24 * time.Hour).
		Add(time.Duration(8+g.rng.IntN(10)) * time.Hour).
		Add(time.Duration(g.rng.IntN(3600)) * time.Second)
	durationMS := round1(800 + g.rng.Float64()*3700)
	finished := started.Add(time.Duration(durationMS * float64(time.Millisecond)))

	execID := uuid.New()
	var rows []model.TestResult
	tallies := []runnerTally{{runner: RunnerAPI}, {runner: RunnerSecurity}}

	// Failure rates fall as the project matures.
	apiFail := math.Max(0.05, 0.3-float64(i)*0.04)
	secFail := math.Max(0.08, 0.4-float64(i)*0.05)
	rows, tallies[0] = g.results(rows, tallies[0], execID, APITests, apiFail, 50, 800)
	rows, tallies[1] = g.results(rows, tallies[1], execID, SecurityTests, secFail, 30, 500)

	total := tallies[0].total + tallies[1].total
	passed := tallies[0].passed + tallies[1].passed
	failed := total - passed
	var zero int64
	score := percent(passed, total)

	e := model.Execution{
		ID:          execID,
		ProjectID:   p.ID,
		Environment: g.cfg.Environment,
		StartedAt:   started,
		FinishedAt:  &finished,
		Score:       &score,
		Total:       &total,
		Passed:      &passed,
		Failed:      &failed,
		Errors:      &zero,
		Skipped:     &zero,
		DurationMS:  &durationMS,
	}
	if err := w.InsertExecution(ctx, e); err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		if err := w.InsertTestResult(ctx, r); err != nil {
			return 0, 0, err
		}
	}
	for _, t := range tallies {
		s := percent(t.passed, t.total)
		h := model.ScoreHistory{
			ID:          uuid.New(),
			ExecutionID: execID,
			ProjectID:   p.ID,
			RunnerType:  t.runner,
			Score:       &s,
			Total:       &t.total,
			Passed:      &t.passed,
			RecordedAt:  &finished,
		}
		if err := w.InsertScoreHistory(ctx, h); err != nil {
			return 0, 0, err
		}
	}

	g.logger.Debug(ctx, "execution seeded",
		logger.String("project", p.Name),
		logger.Int("index", i+1),
		logger.Float64("score", score),
		logger.Int64("passed", passed),
		logger.Int64("total", total),
	)
	return len(rows), len(tallies), nil
}

func (g *Generator) results(rows []model.TestResult, t runnerTally, execID uuid.UUID, tests []TestSpec, failRate, minMS, maxMS float64) ([]model.TestResult, runnerTally) {
	for _, spec := range tests {
		status, detail := StatusPass, ""
		if g.rng.Float64() < failRate {
			status = StatusFail
			detail = FailDetails[g.rng.IntN(len(FailDetails))]
		} else {
			t.passed++
		}
		t.total++

		dur := round1(minMS + g.rng.Float64()*(maxMS-minMS))
		severity, group := spec.Severity, spec.Group
		rows = append(rows, model.TestResult{
			ID:          uuid.New(),
			ExecutionID: execID,
			Name:        spec.Name,
			Type:        spec.Type,
			Status:      status,
			DurationMS:  &dur,
			Detail:      &detail,
			Severity:    &severity,
			Group:       &group,
		})
	}
	return rows, t
}

func percent(passed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(passed) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
