// Package memstore is an in-process slot. Nothing survives the process.
package memstore

import "sync"

type Store struct {
	mu   sync.Mutex
	data map[string]string
}

// New returns an empty store, optionally seeded with data.
func New(seed map[string]string) *Store {
	s := &Store{data: make(map[string]string, len(seed))}
	for k, v := range seed {
		s.data[k] = v
	}
	return s
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]string{}
	}
	s.data[key] = value
	return nil
}
