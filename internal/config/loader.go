package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment conventions.
const (
	EnvPrefix     = "COMPLIANCE_"
	EnvConfigFile = "COMPLIANCE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COMPLIANCE_CONFIG is set
//  3. env (prefix COMPLIANCE_)
func Load(_ context.Context) (*Config, error) {
	const op = "config.load"
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrLoadConfig, err)
		}
	}

	// COMPLIANCE_DB_URL -> db_url. Keys stay flat so underscores match the
	// koanf tags. List keys are comma separated in the environment.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == strings.ToLower(strings.TrimPrefix(EnvConfigFile, EnvPrefix)) {
			return "", nil
		}
		if key == "cors_origins" || key == "metrics_buckets_ms" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBURL) == "":
		return fmt.Errorf("%w: db_url not configured", ErrInvalidConfig)
	case c.DBDriver != "postgres" && c.DBDriver != "sqlite":
		return fmt.Errorf("%w: db_driver must be postgres or sqlite, got %q", ErrInvalidConfig, c.DBDriver)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.DBMaxOpenConns < 1 || c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns:
		return fmt.Errorf("%w: pool needs 0 <= db_max_idle_conns <= db_max_open_conns and db_max_open_conns >= 1", ErrInvalidConfig)
	case c.MaxListLimit < 1 || c.MaxListLimit > ListLimitCeiling:
		return fmt.Errorf("%w: max_list_limit must be between 1 and %d, got %d", ErrInvalidConfig, ListLimitCeiling, c.MaxListLimit)
	case c.DefaultExecutionsLimit < 1 || c.DefaultExecutionsLimit > c.MaxListLimit:
		return fmt.Errorf("%w: default_executions_limit must be between 1 and max_list_limit", ErrInvalidConfig)
	case c.DefaultHistoryLimit < 1 || c.DefaultHistoryLimit > c.MaxListLimit:
		return fmt.Errorf("%w: default_history_limit must be between 1 and max_list_limit", ErrInvalidConfig)
	case c.MaskMinLength < 0 || c.MaskVisiblePrefix < 0:
		return fmt.Errorf("%w: mask lengths must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshIntervalSec < 1:
		return fmt.Errorf("%w: metrics_refresh_interval_sec must be positive", ErrInvalidConfig)
	case !increasing(c.MetricsBucketsMs):
		return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
	}
	return nil
}

// increasing reports whether b is sorted without duplicates. Prometheus
// panics on anything else.
func increasing(b []float64) bool {
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
