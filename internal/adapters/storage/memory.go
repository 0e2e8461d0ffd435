package storage

import (
	"context"
	"sync"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// InMemoryStore keeps entries in process memory.
// Used for dry runs and tests; nothing survives a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []entities.Entry
}

// NewInMemoryStore creates an InMemoryStore seeded with entries.
func NewInMemoryStore(seed ...entities.Entry) *InMemoryStore {
	return &InMemoryStore{entries: append([]entities.Entry{}, seed...)}
}

func (s *InMemoryStore) Init(ctx context.Context) error { return nil }

// Load returns a copy of the entries.
func (s *InMemoryStore) Load(ctx context.Context) ([]entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Save replaces all entries.
func (s *InMemoryStore) Save(ctx context.Context, entries []entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]entities.Entry{}, entries...)
	return nil
}

// Append adds one entry.
func (s *InMemoryStore) Append(ctx context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) Path() string { return "" }

func (s *InMemoryStore) Close() error { return nil }
