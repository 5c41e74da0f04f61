// Package memory is a transactional in-memory storage.Store. Update holds an
// exclusive lock and stages writes, so a failing transaction leaves no trace.
package memory

import (
	"sync"

	"zkbattleship/internal/storage"
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

type reader struct {
	data map[string][]byte
}

func (r reader) Get(key []byte) ([]byte, error) {
	v, ok := r.data[string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(v), nil
}

type tx struct {
	base   map[string][]byte
	staged map[string][]byte
}

func (t *tx) Get(key []byte) ([]byte, error) {
	if v, ok := t.staged[string(key)]; ok {
		return clone(v), nil
	}
	return reader{data: t.base}.Get(key)
}

func (t *tx) Set(key, val []byte) error {
	t.staged[string(key)] = clone(val)
	return nil
}

func (s *Store) View(fn func(storage.Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(reader{data: s.data})
}

func (s *Store) Update(fn func(storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{base: s.data, staged: make(map[string][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	for k, v := range t.staged {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Len reports the number of committed keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
