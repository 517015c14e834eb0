package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists session records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite session store.
// The path should be a file path (e.g. "./sessions.db") or ":memory:" for
// testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			revision   INTEGER NOT NULL,
			state      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	var rec Record
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, revision, state, updated_at FROM sessions
		WHERE session_id = ?
	`, sessionID).Scan(&rec.SessionID, &rec.Revision, &rec.State, &updatedAt)

	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load session: %w", err)
	}

	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, nil
}

// Put implements Store.
//
// The revision guard is enforced in SQL: an UPDATE conditioned on the loaded
// revision for existing records, an INSERT OR IGNORE for new ones. Zero rows
// affected means another writer won the race.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var res sql.Result
	var err error
	if rec.Revision == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO sessions (session_id, revision, state, updated_at)
			VALUES (?, 1, ?, ?)
		`, rec.SessionID, []byte(rec.State), timestamp)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE sessions
			SET revision = revision + 1, state = ?, updated_at = ?
			WHERE session_id = ? AND revision = ?
		`, []byte(rec.State), timestamp, rec.SessionID, rec.Revision)
	}
	if err != nil {
		return Record{}, fmt.Errorf("save session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Record{}, fmt.Errorf("save session: %w", err)
	}
	if affected == 0 {
		return Record{}, ErrConflict
	}

	return Record{
		SessionID: rec.SessionID,
		Revision:  rec.Revision + 1,
		State:     rec.State,
		UpdatedAt: now,
	}, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
