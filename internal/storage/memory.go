package storage

import (
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// MemoryStore keeps widths in memory for the life of the process.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]float64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string][]float64)}
}

func (s *MemoryStore) Save(key string, w []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(w)
	return nil
}

func (s *MemoryStore) Load(key string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(w), nil
}

// Keys returns the saved keys in order.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := maps.Keys(s.data)
	slices.Sort(keys)
	return keys
}

func (s *MemoryStore) Close() error { return nil }
