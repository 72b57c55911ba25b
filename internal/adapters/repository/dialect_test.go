package repository

import (
	"errors"
	"testing"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"sqlite untouched", SQLite, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = ? AND b = ?"},
		{"postgres numbered", Postgres, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = $1 AND b = $2"},
		{"postgres no placeholders", Postgres, "SELECT 1", "SELECT 1"},
		{"postgres many", Postgres, "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rebind(tt.dialect, tt.in); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		" sqlite ":   SQLite,
		"sqlite3":    SQLite,
	} {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Errorf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseDialect("oracle"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestPrepareDSN(t *testing.T) {
	if got := prepareDSN(Postgres, "postgres://u@h/db?sslmode=disable"); got != "postgres://u@h/db?sslmode=disable" {
		t.Errorf("postgres dsn changed: %q", got)
	}
	if got := prepareDSN(SQLite, "/tmp/a.db"); got != "/tmp/a.db?_pragma=foreign_keys(1)&_time_format=sqlite" {
		t.Errorf("sqlite dsn = %q", got)
	}
	if got := prepareDSN(SQLite, "file:a.db?_time_format=sqlite"); got != "file:a.db?_time_format=sqlite&_pragma=foreign_keys(1)" {
		t.Errorf("sqlite dsn with params = %q", got)
	}
}
