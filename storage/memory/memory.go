// Package memory provides an in-memory implementation of the usagekit.Storage
// interface. This implementation is primarily intended for testing and
// development.
package memory

import (
	"context"
	"sync"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// Storage implements usagekit.Storage using in-memory maps.
// Update serializes per identity, not globally, so unrelated identities
// do not contend.
type Storage struct {
	mu      sync.RWMutex
	records map[string][]byte
	locks   map[string]*sync.Mutex
}

// New creates a new in-memory storage adapter.
func New() *Storage {
	return &Storage{
		records: make(map[string][]byte),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Load implements usagekit.Storage.
func (s *Storage) Load(ctx context.Context, identity string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.records[identity]
	if !ok {
		return nil, usagekit.ErrRecordNotFound
	}

	// Return a copy to prevent external mutations
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Save implements usagekit.Storage.
func (s *Storage) Save(ctx context.Context, identity string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[identity] = stored
	return nil
}

// Clear implements usagekit.Storage.
func (s *Storage) Clear(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity)
	return nil
}

// Update implements usagekit.Storage with per-identity mutual exclusion.
func (s *Storage) Update(ctx context.Context, identity string, fn usagekit.UpdateFunc) ([]byte, error) {
	lock := s.lockFor(identity)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, ok := s.records[identity]
	s.mu.RUnlock()

	var cur []byte
	if ok {
		cur = make([]byte, len(current))
		copy(cur, current)
	}

	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return cur, nil
	}

	if err := s.Save(ctx, identity, next); err != nil {
		return nil, err
	}
	return next, nil
}

// lockFor returns the mutex guarding one identity, creating it on first use.
func (s *Storage) lockFor(identity string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[identity]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[identity] = lock
	}
	return lock
}

// Reset removes all data (useful for testing).
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string][]byte)
	s.locks = make(map[string]*sync.Mutex)
}
