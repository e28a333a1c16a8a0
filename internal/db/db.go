// Package db provides the embedded SQLite metadata store for recordings.
// Schema changes are applied through embedded golang-migrate migrations when
// the database is opened.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// ctx returns a background context for bun queries.
func ctx() context.Context { return context.Background() }

// DB wraps the bun.DB connection.
type DB struct {
	bun *bun.DB
}

// Open opens the SQLite database at the given path, runs any pending
// migrations, and returns the DB handle.
func Open(dbPath string) (*DB, error) {
	// For in-memory databases, use shared cache so that the migration
	// connection (opened separately by golang-migrate) sees the same database.
	if dbPath == ":memory:" {
		dbPath = "file::memory:?cache=shared"
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// busy_timeout waits up to 5 seconds for locks to clear
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	// WAL mode allows concurrent reads while writing
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Keep at least one connection open to prevent in-memory databases
	// from being destroyed when all connections close.
	conn.SetMaxIdleConns(1)

	// Run all pending migrations (uses its own connection to avoid m.Close()
	// side effects on the application connection)
	if err := runMigrations(dbPath); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{bun: bun.NewDB(conn, sqlitedialect.New())}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.bun.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.bun.PingContext(ctx())
}
