package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/compliance/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
			convey.So(cfg.DBURL, convey.ShouldBeEmpty)
			convey.So(cfg.DBMaxIdleConns, convey.ShouldEqual, 5)
			convey.So(cfg.DBMaxOpenConns, convey.ShouldEqual, 15)
			convey.So(cfg.DefaultExecutionsLimit, convey.ShouldEqual, 20)
			convey.So(cfg.DefaultHistoryLimit, convey.ShouldEqual, 30)
			convey.So(cfg.MaxListLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaskMinLength, convey.ShouldEqual, 30)
			convey.So(cfg.MaskVisiblePrefix, convey.ShouldEqual, 4)
			convey.So(cfg.MaskExemptPrefix, convey.ShouldEqual, "http")
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://localhost:5173"})
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "compliance")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "api")
		})

		convey.Convey("Then durations are derived from seconds", func() {
			convey.So(cfg.ConnMaxLifetime(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.ConnMaxIdleTime(), convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.MetricsRefreshInterval(), convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("Then validation requires a database URL", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "db_url not configured")

			cfg.DBURL = "postgres://localhost/compliance"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		valid := func() *config.Config {
			c := config.New()
			c.DBURL = "file:test.db"
			c.DBDriver = "sqlite"
			return c
		}

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"unknown driver", func(c *config.Config) { c.DBDriver = "mysql" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"idle above open", func(c *config.Config) { c.DBMaxIdleConns = 20 }},
			{"no open connections", func(c *config.Config) { c.DBMaxOpenConns = 0 }},
			{"default above max", func(c *config.Config) { c.DefaultHistoryLimit = 101 }},
			{"zero executions default", func(c *config.Config) { c.DefaultExecutionsLimit = 0 }},
			{"negative mask length", func(c *config.Config) { c.MaskMinLength = -1 }},
			{"blank addr", func(c *config.Config) { c.Addr = "  " }},
			{"max above ceiling", func(c *config.Config) { c.MaxListLimit = config.ListLimitCeiling + 1 }},
			{"zero metrics refresh", func(c *config.Config) { c.MetricsRefreshIntervalSec = 0 }},
			{"unsorted buckets", func(c *config.Config) { c.MetricsBucketsMs = []float64{10, 5} }},
			{"duplicate buckets", func(c *config.Config) { c.MetricsBucketsMs = []float64{5, 5} }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				c := valid()
				tc.mutate(c)

				convey.Convey("Then it is rejected", func() {
					convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When max_list_limit sits at the ceiling", func() {
			c := valid()
			c.MaxListLimit = config.ListLimitCeiling
			c.MetricsBucketsMs = []float64{1, 10, 100}

			convey.Convey("Then it is accepted", func() {
				convey.So(c.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
