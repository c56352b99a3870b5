// Package memory holds in-process repositories used when STORE_MODE=memory and by tests.
package memory

import (
	"encoding/json"
	"sync"
)

// Store keeps copies of entities of type T keyed by K. Values are copied through JSON on the
// way in and out, so callers never share memory with the store, as with a real database.
type Store[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K][]byte
	keySelector func(*T) K
}

// NewStore creates a Store. keySelector extracts the entity key from a value.
func NewStore[K comparable, T any](keySelector func(*T) K) *Store[K, T] {
	return &Store[K, T]{
		records:     make(map[K][]byte),
		keySelector: keySelector,
	}
}

func (s *Store[K, T]) load(key K) (*T, bool, error) {
	raw, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, true, err
	}
	return v, true, nil
}

func (s *Store[K, T]) save(v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.records[s.keySelector(v)] = raw
	return nil
}

func (s *Store[K, T]) all() ([]T, error) {
	out := make([]T, 0, len(s.records))
	for _, raw := range s.records {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
