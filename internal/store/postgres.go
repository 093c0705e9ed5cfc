// Package store provides the persisted interaction counters for Theta.
//
// This file implements the PostgreSQL-backed counter store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists counters in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore migrations applied")

	return &PostgresStore{db: db}, nil
}

// IncrementCounter atomically adds one to the named counter.
func (s *PostgresStore) IncrementCounter(name string) error {
	_, err := s.db.Exec(`
		INSERT INTO stats (name, count) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET count = stats.count + 1`, name)
	if err != nil {
		slog.Error("PostgresStore IncrementCounter failed", "error", err, "name", name)
		return fmt.Errorf("failed to increment counter %s: %w", name, err)
	}
	slog.Debug("PostgresStore IncrementCounter succeeded", "name", name)
	return nil
}

// Counters returns the current value of every counter.
func (s *PostgresStore) Counters() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT name, count FROM stats`)
	if err != nil {
		slog.Error("PostgresStore Counters query failed", "error", err)
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			slog.Error("PostgresStore Counters scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan counter row: %w", err)
		}
		counters[name] = count
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore Counters rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate counter rows: %w", err)
	}
	slog.Debug("PostgresStore Counters succeeded", "count", len(counters))
	return counters, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("PostgresStore closing database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("PostgresStore failed to close database", "error", err)
	}
	return err
}
