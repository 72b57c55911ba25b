package repository

import "time"

// Pool defaults: five persistent connections plus ten overflow.
const (
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 15
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithMaxIdleConns sets how many connections stay open between requests.
func WithMaxIdleConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxIdleConns = n
		}
	}
}

// WithMaxOpenConns caps concurrent connections; callers beyond it wait.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithConnMaxLifetime recycles connections older than d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithConnMaxIdleTime closes connections idle for longer than d.
func WithConnMaxIdleTime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxIdleTime = d
		}
	}
}
