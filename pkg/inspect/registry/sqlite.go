// Package registry provides a SQLite-backed reference-image registry:
// the mapping from an order/session key to the catalog photo the Compare
// stage judges the user's item against.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/faultlens/faultlens/pkg/inspect"
)

// SQLite maps session keys to reference image paths in a SQLite database.
// It is safe for concurrent use.
type SQLite struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ inspect.ReferenceRegistry = (*SQLite)(nil)

// Open creates or opens a reference registry at the given path.
// Use ":memory:" for testing.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			session_id      TEXT PRIMARY KEY,
			reference_image TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Register records the reference image for a session key, replacing any
// previous registration.
func (r *SQLite) Register(ctx context.Context, sessionID, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry closed")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders (session_id, reference_image)
		VALUES (?, ?)
	`, sessionID, imagePath)
	if err != nil {
		return fmt.Errorf("register reference: %w", err)
	}
	return nil
}

// Lookup implements inspect.ReferenceRegistry.
func (r *SQLite) Lookup(ctx context.Context, sessionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return "", fmt.Errorf("registry closed")
	}

	var path string
	err := r.db.QueryRowContext(ctx, `
		SELECT reference_image FROM orders WHERE session_id = ?
	`, sessionID).Scan(&path)

	if err == sql.ErrNoRows {
		return "", inspect.ErrReferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup reference: %w", err)
	}
	return path, nil
}

// Close releases the database connection.
func (r *SQLite) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	return r.db.Close()
}
