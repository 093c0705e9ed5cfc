// Package store provides the persisted interaction counters for Theta.
//
// This file implements a non-durable in-memory store used in tests and when
// no database DSN is configured.
package store

import "sync"

// InMemoryStore keeps counters in process memory only.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewInMemoryStore creates an in-memory store with the standard counter rows
// initialized to zero.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		counters: map[string]int64{
			"comments_analyzed": 0,
			"dms_answered":      0,
		},
	}
}

// IncrementCounter atomically adds one to the named counter.
func (s *InMemoryStore) IncrementCounter(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return nil
}

// Counters returns a copy of the current counter values.
func (s *InMemoryStore) Counters() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
