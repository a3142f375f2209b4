package cache

import (
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]Entry
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(projectKey, kind, artifactKey, inputsDigest string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[entryKey(projectKey, kind, artifactKey)]
	m.mu.RUnlock()
	if !ok || !e.valid(inputsDigest, m.ttl) {
		return nil, false
	}
	return e.Data, true
}

func (m *MemoryStore) Set(projectKey, kind, artifactKey, inputsDigest string, value []byte) error {
	m.mu.Lock()
	m.entries[entryKey(projectKey, kind, artifactKey)] = Entry{
		Hash:      inputsDigest,
		Timestamp: time.Now(),
		Data:      slices.Clone(value),
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
	return nil
}
