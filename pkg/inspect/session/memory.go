package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store for tests and examples.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]Record
	closed bool
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Record),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	rec, ok := m.data[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}

	// Copy the state slice so callers can't mutate stored data.
	out := rec
	out.State = append([]byte(nil), rec.State...)
	return out, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	var current int64
	if existing, ok := m.data[rec.SessionID]; ok {
		current = existing.Revision
	}
	if current != rec.Revision {
		return Record{}, ErrConflict
	}

	stored := Record{
		SessionID: rec.SessionID,
		Revision:  rec.Revision + 1,
		State:     append([]byte(nil), rec.State...),
		UpdatedAt: time.Now().UTC(),
	}
	m.data[rec.SessionID] = stored
	return stored, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored sessions. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
