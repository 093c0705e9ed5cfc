// Package store provides the persisted interaction counters for Theta.
//
// This file implements the SQLite-backed counter store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists counters in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore migrations applied", "path", dsn)

	return &SQLiteStore{db: db}, nil
}

// IncrementCounter atomically adds one to the named counter.
func (s *SQLiteStore) IncrementCounter(name string) error {
	res, err := s.db.Exec(`UPDATE stats SET count = count + 1 WHERE name = ?`, name)
	if err != nil {
		slog.Error("SQLiteStore IncrementCounter failed", "error", err, "name", name)
		return fmt.Errorf("failed to increment counter %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Counter rows outside the migration set are created on first use.
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO stats (name, count) VALUES (?, 1)`, name); err != nil {
			slog.Error("SQLiteStore IncrementCounter insert failed", "error", err, "name", name)
			return fmt.Errorf("failed to create counter %s: %w", name, err)
		}
	}
	slog.Debug("SQLiteStore IncrementCounter succeeded", "name", name)
	return nil
}

// Counters returns the current value of every counter.
func (s *SQLiteStore) Counters() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT name, count FROM stats`)
	if err != nil {
		slog.Error("SQLiteStore Counters query failed", "error", err)
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			slog.Error("SQLiteStore Counters scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan counter row: %w", err)
		}
		counters[name] = count
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore Counters rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate counter rows: %w", err)
	}
	slog.Debug("SQLiteStore Counters succeeded", "count", len(counters))
	return counters, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("SQLiteStore closing database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("SQLiteStore failed to close database", "error", err)
	}
	return err
}
