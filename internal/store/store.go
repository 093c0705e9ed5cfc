// Package store provides the persisted interaction counters for Theta.
//
// Counters are a durable mapping from counter name to a non-negative
// integer, mutated only by atomic increments. SQLite, PostgreSQL, and
// in-memory implementations are available; the backend is chosen from the
// DSN shape at startup.
package store

import "strings"

// Store is the interaction counter abstraction consumed by the pipeline.
type Store interface {
	// IncrementCounter atomically adds one to the named counter. The row is
	// created by the migrations at startup; increments commute, so no
	// cross-caller coordination is required.
	IncrementCounter(name string) error

	// Counters returns the current value of every counter.
	Counters() (map[string]int64, error)

	// Close releases the underlying database resources.
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite or a
	// postgres:// URL / key=value string for PostgreSQL.
	DSN string
}

// Option defines a configuration option for store construction.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-shaped DSNs and "sqlite"
// for everything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
