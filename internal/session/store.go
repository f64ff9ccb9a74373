package session

import (
	"context"
	"sync"
)

// Store maps normalized user ids to their current session. There is no
// per-user locking: two concurrent turns for the same user may both read the
// pre-mutation session and race on Put, and the last write wins. That race is
// accepted; conversation turns are human-paced.
type Store interface {
	// Get returns the user's session, or nil when none exists. The returned
	// value is the caller's copy; mutations are committed with Put.
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
	Close() error
}

// MemoryStore is the default process-local store. Sessions are ephemeral and
// rebuilt from scratch if the process restarts. Entries live until the exit
// flow deletes them.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(ctx context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	if s == nil || s.UserID == "" {
		return nil
	}
	cp := *s
	m.mu.Lock()
	m.sessions[s.UserID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
