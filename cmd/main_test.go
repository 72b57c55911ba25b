package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/compliance/internal/config"
	"github.com/okian/compliance/pkg/logger"
	"github.com/okian/compliance/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DBDriver = "sqlite"
	cfg.DBURL = filepath.Join(t.TempDir(), "compliance.db")
	cfg.DBMigrate = true
	return cfg
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a sqlite configuration with migration enabled", t, func() {
		ctx := context.Background()
		cfg := sqliteConfig(t)

		convey.Convey("When opening the store", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then the schema exists and the pool follows the config", func() {
				projects, err := store.ProjectsWithLastScore(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(projects, convey.ShouldBeEmpty)
				convey.So(store.Stats().MaxOpenConnections, convey.ShouldEqual, cfg.DBMaxOpenConns)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.DBDriver = "oracle"
			store, err := openStore(ctx, cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(store, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewHTTPServer(t *testing.T) {
	convey.Convey("Given a server built from configuration", t, func() {
		ctx := context.Background()
		cfg := sqliteConfig(t)
		cfg.Addr = ":0"

		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = store.Close() }()

		srv := newHTTPServer(ctx, cfg, store, logger.Nop())

		convey.Convey("Then timeouts are set", func() {
			convey.So(srv.Addr, convey.ShouldEqual, ":0")
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
		})

		convey.Convey("Then API, docs and readiness are routed", func() {
			for _, path := range []string{"/api/health", "/api/ready", "/api/projects", "/api/stats", "/openapi.yaml", "/api-docs", "/metrics"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then configured limits are enforced", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/executions?limit=101", http.NoBody)
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}

type fakePool struct{ calls int }

func (f *fakePool) Stats() sql.DBStats {
	f.calls++
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2}
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in the configuration", t, func() {
		cfg := config.New()
		cfg.MetricsNamespace = "audit"
		cfg.MetricsRefreshIntervalSec = 3
		cfg.MetricsLabels = map[string]string{"region": "eu-west-1"}
		defer metrics.Configure()

		convey.Convey("When the global manager is configured from them", func() {
			m := metrics.Configure(metricsOptions(cfg)...)
			metrics.RecordRunRejected()

			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the updater interval and series names follow the config", func() {
				convey.So(m, convey.ShouldPointTo, metrics.Global())
				convey.So(m.RefreshInterval(), convey.ShouldEqual, 3*time.Second)

				var found bool
				for _, f := range families {
					if f.GetName() == "audit_api_run_requests_rejected_total" {
						found = true
						convey.So(f.GetMetric()[0].GetLabel()[0].GetValue(), convey.ShouldEqual, "eu-west-1")
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When metrics are disabled", func() {
			cfg.MetricsEnabled = false
			m := metrics.Configure(metricsOptions(cfg)...)

			convey.Convey("Then recording is switched off", func() {
				convey.So(m.Enabled(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestMetricsUpdater(t *testing.T) {
	convey.Convey("Given a metrics updater", t, func() {
		pool := &fakePool{}

		convey.Convey("When updating once", func() {
			convey.So(func() { updateMetrics(pool) }, convey.ShouldNotPanic)
			convey.So(pool.calls, convey.ShouldEqual, 1)
		})

		convey.Convey("When the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startMetricsUpdater(ctx, time.Millisecond, pool)
				close(done)
			}()
			cancel()

			convey.Convey("Then the updater returns", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("metrics updater did not stop")
				}
			})
		})
	})
}
