// Package session persists the local player's session (room code, name,
// player id) across CLI runs. Entries expire 24 hours after write; expired
// entries read as absent and are purged on read.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TTL is the fixed lifetime of every entry, measured from write time.
const TTL = 24 * time.Hour

// Cache is a sqlite-backed expiring key-value store.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the cache database at path. Use ":memory:" for an
// ephemeral cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS session (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Set writes value under key with a fresh 24-hour expiry.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	expiresAt := c.now().Add(TTL).Unix()
	query := `
		INSERT INTO session (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`
	if _, err := c.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Get reads the value for key. Expired or missing entries report ok=false;
// an expired entry is deleted on the way out.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM session WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	if c.now().Unix() > expiresAt {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, key); err != nil {
			return "", false, fmt.Errorf("purge %q: %w", key, err)
		}
		return "", false, nil
	}

	return value, true, nil
}

// Delete removes key regardless of expiry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
