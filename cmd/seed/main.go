package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/okian/compliance/internal/adapters/repository"
	"github.com/okian/compliance/internal/seed"
	"github.com/okian/compliance/pkg/logger"
)

const seedTimeout = 2 * time.Minute

var errNoDSN = errors.New("COMPLIANCE_DB_URL not configured and -dsn not given")

// options collects the parsed flags.
type options struct {
	driver  string
	dsn     string
	migrate bool
	config  seed.Config
}

func main() {
	opts := options{config: seed.DefaultConfig()}
	flag.StringVar(&opts.driver, "driver", envOr("COMPLIANCE_DB_DRIVER", "postgres"), "Database driver: postgres or sqlite")
	flag.StringVar(&opts.dsn, "dsn", os.Getenv("COMPLIANCE_DB_URL"), "Database URL (default $COMPLIANCE_DB_URL)")
	flag.BoolVar(&opts.migrate, "migrate", false, "Create the schema before seeding")
	flag.IntVar(&opts.config.MinExecutions, "min-executions", opts.config.MinExecutions, "Minimum executions per project")
	flag.IntVar(&opts.config.MaxExecutions, "max-executions", opts.config.MaxExecutions, "Maximum executions per project")
	flag.IntVar(&opts.config.SpanDays, "days", opts.config.SpanDays, "Days of history to generate")
	flag.Uint64Var(&opts.config.Seed, "seed", opts.config.Seed, "Random seed; reuse it to reproduce a data set")
	verbose := flag.Bool("verbose", false, "Log every execution")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	err := run(ctx, opts, log)
	cancel()
	if err != nil {
		log.Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
}

// run opens the store, optionally migrates it and writes a fresh data set.
func run(ctx context.Context, opts options, log logger.Logger) error {
	if opts.dsn == "" {
		return errNoDSN
	}
	g, err := seed.New(opts.config, seed.WithLogger(log))
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, opts.driver, opts.dsn)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if opts.migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	sum, err := g.Run(ctx, repository.NewSeeder(store))
	if err != nil {
		return err
	}
	log.Info(ctx, "seed complete",
		logger.Int("projects", sum.Projects),
		logger.Int("executions", sum.Executions),
		logger.Int("results", sum.Results),
		logger.Int("history", sum.History),
		logger.Any("seed", opts.config.Seed),
	)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
