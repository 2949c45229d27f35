// Package history persists the locally known conversation list so the
// browser can paint something when the API is unreachable.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB is a Store backed by a SQLite database.
type DB struct {
	db   *sql.DB
	path string
}

var _ Store = (*DB)(nil)

// initializeSchema creates the database schema if it doesn't exist.
func initializeSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}

// initDB ensures the database and tables exist, returning a connection.
func initDB(dataSourceName string) (*sql.DB, error) {
	dbDir := filepath.Dir(dataSourceName)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		err = os.MkdirAll(dbDir, 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open opens (creating if needed) the SQLite store at dbPath.
func Open(dbPath string) (*DB, error) {
	db, err := initDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open/initialize database at %s: %w", dbPath, err)
	}
	return &DB{db: db, path: dbPath}, nil
}

// Path returns the location of the database file.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Get returns the value stored under key.
func (d *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("history: failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value stored under key.
func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("history: failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("history: failed to delete key %q: %w", key, err)
	}
	return nil
}
