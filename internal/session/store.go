package session

import (
	"context"
	"sync"
)

// Store persists guest sessions keyed by client id. The engine defines the
// TTL policy; implementations only hold bytes.
type Store interface {
	Put(ctx context.Context, clientID string, sess *GuestSession) error
	Get(ctx context.Context, clientID string) (*GuestSession, error)
	Delete(ctx context.Context, clientID string) error
}

// MemoryStore is an in-memory Store for tests and single-process dev runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]GuestSession
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]GuestSession)}
}

// Put stores a copy of the session.
func (s *MemoryStore) Put(ctx context.Context, clientID string, sess *GuestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = *sess
	return nil
}

// Get returns the stored session or ErrSessionNotFound.
func (s *MemoryStore) Get(ctx context.Context, clientID string) (*GuestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[clientID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := sess
	return &out, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clientID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
