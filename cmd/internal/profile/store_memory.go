package profile

import (
	"context"
	"sync"
)

// InMemoryStore is a dev-only fallback when no external store is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewInMemoryStore constructs an empty in-memory Store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]Profile)}
}

// Close closes the store (noop for in-memory).
func (s *InMemoryStore) Close() error { return nil }

// Put stores a copy of p.
func (s *InMemoryStore) Put(ctx context.Context, p Profile) error {
	if p.ID == "" {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
	return nil
}

// Get returns a copy of the profile stored under id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (Profile, bool, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, false, nil
	}
	return p.Clone(), true, nil
}
