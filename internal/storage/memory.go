// Package storage provides durable key-value stores backing the bookmark
// list: in-memory, a JSON file, and SQLite.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.KeyValueStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory key-value store. Safe for concurrent access.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		log:    log,
	}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		s.log.Debug("key not found: %s", key)
	}
	return v, ok, nil
}

// Set overwrites the value stored under key.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("set %s (%d bytes)", key, len(value))
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many Set calls succeeded. Tests use it to assert
// that every bookmark change persists the list.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
