package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value  []byte
	stored time.Time
}

// MemoryStore keeps entries in process memory with the same age and capacity policy
// as FileStore. The MCP server uses it when no persistent cache is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
	policy  Policy
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[string]memoryEntry),
		policy:  policy.withDefaults(),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	if err := validate(namespace, key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	e, ok := s.entries[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().Sub(e.stored) > s.policy.MaxAge {
		s.mu.Lock()
		delete(s.entries[namespace], key)
		s.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, namespace, key string, value []byte) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.entries[namespace]
	if !ok {
		ns = make(map[string]memoryEntry)
		s.entries[namespace] = ns
	}
	ns[key] = memoryEntry{value: v, stored: s.now()}

	for len(ns) > s.policy.MaxEntries {
		oldest := ""
		var oldestAt time.Time
		for k, e := range ns {
			if oldest == "" || e.stored.Before(oldestAt) {
				oldest, oldestAt = k, e.stored
			}
		}
		delete(ns, oldest)
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries[namespace], key)
	s.mu.Unlock()
	return nil
}
