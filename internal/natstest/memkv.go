// Package natstest provides in-memory doubles for the broker and KV store
// interfaces the session engine, station registry and relay server depend
// on, so their logic can be exercised without a live NATS/JetStream
// instance.
package natstest

import (
	"context"
	"sync"

	"github.com/pluce/openlink/internal/kv"
	"github.com/pluce/openlink/internal/olerr"
)

type memEntry struct {
	value    []byte
	revision uint64
}

// MemoryStore is an in-memory kv.Store double with the same
// revision/compare-and-swap semantics as a JetStream KV bucket.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	nextRev uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, 0, olerr.NotFound("key not found: "+key, nil)
	}
	return e.value, e.revision, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRev++
	s.entries[key] = memEntry{value: value, revision: s.nextRev}
	return s.nextRev, nil
}

func (s *MemoryStore) Update(_ context.Context, key string, value []byte, expectedRevision uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[key]
	currentRev := uint64(0)
	if ok {
		currentRev = current.revision
	}
	if currentRev != expectedRevision {
		return 0, olerr.StateConflict("revision conflict on key: "+key, nil)
	}
	s.nextRev++
	s.entries[key] = memEntry{value: value, revision: s.nextRev}
	return s.nextRev, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemoryStore) PurgeAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memEntry)
	return nil
}

var _ kv.Store = (*MemoryStore)(nil)
