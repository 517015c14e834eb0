// Package session provides durable keyed storage for inspection session
// state, used to resume multi-turn conversations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Record is the persisted snapshot of one session's state. State is opaque
// to the store; the engine serializes and deserializes it.
type Record struct {
	// SessionID is the session key (e.g. the order number).
	SessionID string `json:"session_id"`

	// Revision is the optimistic-concurrency token. A record loaded at
	// revision N can only be written back while the stored revision is
	// still N; the write bumps it to N+1. New records carry revision 0.
	Revision int64 `json:"revision"`

	// State is the serialized session state.
	State json.RawMessage `json:"state"`

	// UpdatedAt is set by the store on every successful Put.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists session records keyed by session ID.
// Implementations must be safe for concurrent use.
//
// Put is a compare-and-swap on Record.Revision, which serializes the
// read-modify-write cycle for a session key: two concurrent turns for the
// same session cannot both commit against the same loaded revision.
type Store interface {
	// Get retrieves the record for a session.
	// Returns ErrNotFound if the session has never been stored.
	Get(ctx context.Context, sessionID string) (Record, error)

	// Put writes a record. The stored revision must equal rec.Revision
	// (0 for a record that must not exist yet); on success the stored
	// revision becomes rec.Revision+1 and the stored record is returned.
	// Returns ErrConflict on a revision mismatch.
	Put(ctx context.Context, rec Record) (Record, error)

	// Delete removes a session record.
	// Returns nil if the record doesn't exist.
	Delete(ctx context.Context, sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no record exists for the session key.
	ErrNotFound = errors.New("session not found")

	// ErrConflict indicates a revision mismatch on Put: the record was
	// created or updated concurrently since it was loaded.
	ErrConflict = errors.New("session revision conflict")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("session store closed")
)
