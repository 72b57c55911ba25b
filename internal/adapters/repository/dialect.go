package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour of the underlying database.
type Dialect string

// Supported dialects. The values double as database/sql driver names.
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a configured driver name.
func ParseDialect(driver string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(driver))); d {
	case Postgres, SQLite:
		return d, nil
	case "postgresql", "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// rebind rewrites '?' placeholders into the dialect's bind syntax.
// Queries in this package never contain a literal '?'.
func rebind(d Dialect, query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// prepareDSN adds the connection parameters the store relies on. For SQLite
// that is foreign key enforcement and a sortable timestamp text format, so
// MAX(started_at) and ORDER BY behave like they do on Postgres.
func prepareDSN(d Dialect, dsn string) string {
	if d != SQLite {
		return dsn
	}
	params := []string{"_pragma=foreign_keys(1)", "_time_format=sqlite"}
	for _, p := range params {
		key := p[:strings.IndexByte(p, '=')]
		if strings.Contains(dsn, key+"=") {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}
