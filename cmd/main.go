package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/compliance/internal/adapters/http/api"
	"github.com/okian/compliance/internal/adapters/http/swagger"
	"github.com/okian/compliance/internal/adapters/repository"
	service "github.com/okian/compliance/internal/app"
	"github.com/okian/compliance/internal/config"
	"github.com/okian/compliance/internal/domain/masking"
	"github.com/okian/compliance/pkg/logger"
	"github.com/okian/compliance/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	startupTimeout    = 15 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// run opens the store, serves HTTP until ctx is canceled and shuts down.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	openCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := openStore(openCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}()
	log.Info(ctx, "store ready", logger.String("driver", cfg.DBDriver), logger.Bool("migrated", cfg.DBMigrate))

	go startMetricsUpdater(ctx, metrics.Global().RefreshInterval(), store)

	srv := newHTTPServer(ctx, cfg, store, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// metricsOptions maps the metrics_* settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMs),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// openStore connects to the configured database and optionally creates the schema.
func openStore(ctx context.Context, cfg *config.Config) (*repository.SQLStore, error) {
	store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBURL,
		repository.WithMaxIdleConns(cfg.DBMaxIdleConns),
		repository.WithMaxOpenConns(cfg.DBMaxOpenConns),
		repository.WithConnMaxLifetime(cfg.ConnMaxLifetime()),
		repository.WithConnMaxIdleTime(cfg.ConnMaxIdleTime()),
	)
	if err != nil {
		return nil, err
	}
	if cfg.DBMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

// newHTTPServer wires the service, API routes and docs into an http.Server.
func newHTTPServer(ctx context.Context, cfg *config.Config, store *repository.SQLStore, log logger.Logger) *http.Server {
	svc := service.New(store,
		service.WithLogger(log.Named("service")),
		service.WithMaskPolicy(masking.Policy{
			MinLength:    cfg.MaskMinLength,
			Visible:      cfg.MaskVisiblePrefix,
			ExemptPrefix: cfg.MaskExemptPrefix,
		}),
	)

	apiServer := api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithStatsProvider(store),
		api.WithLimits(api.Limits{
			DefaultExecutions: cfg.DefaultExecutionsLimit,
			DefaultHistory:    cfg.DefaultHistoryLimit,
			Max:               cfg.MaxListLimit,
		}),
	)

	mux := http.NewServeMux()
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// poolStatser is satisfied by the SQL store.
type poolStatser interface {
	Stats() sql.DBStats
}

// startMetricsUpdater samples pool and runtime gauges until ctx is canceled.
func startMetricsUpdater(ctx context.Context, interval time.Duration, pool poolStatser) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateMetrics(pool)
		}
	}
}

func updateMetrics(pool poolStatser) {
	s := pool.Stats()
	metrics.UpdateDBConnections(s.OpenConnections, s.InUse, s.Idle)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
