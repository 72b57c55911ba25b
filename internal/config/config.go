// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// ListLimitCeiling is the largest window any list endpoint may serve.
const ListLimitCeiling = 100

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DBDriver is postgres or sqlite.
	DBDriver string `koanf:"db_driver"`

	// DBURL is the driver specific DSN. Required.
	DBURL string `koanf:"db_url"`

	// Connection pool sizing. Open is persistent plus overflow.
	DBMaxIdleConns       int `koanf:"db_max_idle_conns"`
	DBMaxOpenConns       int `koanf:"db_max_open_conns"`
	DBConnMaxLifetimeSec int `koanf:"db_conn_max_lifetime_sec"`
	DBConnMaxIdleTimeSec int `koanf:"db_conn_max_idle_time_sec"`

	// DBMigrate creates the schema at startup when tables are missing.
	DBMigrate bool `koanf:"db_migrate"`

	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// List windows for the reporting endpoints.
	DefaultExecutionsLimit int `koanf:"default_executions_limit"`
	DefaultHistoryLimit    int `koanf:"default_history_limit"`
	MaxListLimit           int `koanf:"max_list_limit"`

	// Masking policy for test result details.
	MaskMinLength     int    `koanf:"mask_min_length"`
	MaskVisiblePrefix int    `koanf:"mask_visible_prefix"`
	MaskExemptPrefix  string `koanf:"mask_exempt_prefix"`

	// Prometheus exposition. Labels and buckets usually come from the file.
	MetricsEnabled            bool              `koanf:"metrics_enabled"`
	MetricsNamespace          string            `koanf:"metrics_namespace"`
	MetricsSubsystem          string            `koanf:"metrics_subsystem"`
	MetricsRefreshIntervalSec int               `koanf:"metrics_refresh_interval_sec"`
	MetricsBucketsMs          []float64         `koanf:"metrics_buckets_ms"`
	MetricsLabels             map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. DBURL has no default.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":8000",
		DBDriver:               "postgres",
		DBMaxIdleConns:         5,
		DBMaxOpenConns:         15,
		DBConnMaxLifetimeSec:   1800,
		DBConnMaxIdleTimeSec:   300,
		CORSOrigins:            []string{"http://localhost:5173"},
		DefaultExecutionsLimit: 20,
		DefaultHistoryLimit:    30,
		MaxListLimit:           100,
		MaskMinLength:          30,
		MaskVisiblePrefix:      4,
		MaskExemptPrefix:       "http",

		MetricsEnabled:            true,
		MetricsNamespace:          "compliance",
		MetricsSubsystem:          "api",
		MetricsRefreshIntervalSec: 10,
	}
}

// ConnMaxLifetime returns DBConnMaxLifetimeSec as a duration.
func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.DBConnMaxLifetimeSec) * time.Second
}

// ConnMaxIdleTime returns DBConnMaxIdleTimeSec as a duration.
func (c *Config) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.DBConnMaxIdleTimeSec) * time.Second
}

// MetricsRefreshInterval returns MetricsRefreshIntervalSec as a duration.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalSec) * time.Second
}
