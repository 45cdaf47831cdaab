package memory

import (
	"context"
	"sync"

	"github.com/aretw0/shaperig/pkg/ports"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the definition blob in memory.
func (s *Store) Save(ctx context.Context, name string, definition []byte) error {
	// Copy so later caller mutations can't reach stored state
	copied := make([]byte, len(definition))
	copy(copied, definition)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves the definition blob from memory.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	definition, ok := s.data[name]
	if !ok {
		return nil, ports.ErrDefinitionNotFound
	}

	ret := make([]byte, len(definition))
	copy(ret, definition)
	return ret, nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored system names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}
