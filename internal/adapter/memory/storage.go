// Package memory implements process-local storage, for sessions that should
// not persist and for tests.
package memory

import (
	"bytes"
	"slices"
	"strings"
	"sync"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Compile-time check: Storage implements domain.Storage.
var _ domain.Storage = (*Storage)(nil)

// Storage is an in-memory domain.Storage.
type Storage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewStorage() *Storage {
	return &Storage{items: make(map[string][]byte)}
}

func (s *Storage) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return bytes.Clone(v), ok, nil
}

func (s *Storage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = bytes.Clone(value)
	return nil
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *Storage) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
