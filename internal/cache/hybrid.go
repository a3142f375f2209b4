package cache

import "errors"

// HybridStore answers from a memory store first and falls back to a
// persistent store, promoting hits into memory.
type HybridStore struct {
	front *MemoryStore
	back  Store
}

// NewHybridStore layers front over back.
func NewHybridStore(front *MemoryStore, back Store) *HybridStore {
	return &HybridStore{front: front, back: back}
}

func (h *HybridStore) Get(projectKey, kind, artifactKey, inputsDigest string) ([]byte, bool) {
	if data, ok := h.front.Get(projectKey, kind, artifactKey, inputsDigest); ok {
		return data, true
	}
	data, ok := h.back.Get(projectKey, kind, artifactKey, inputsDigest)
	if !ok {
		return nil, false
	}
	_ = h.front.Set(projectKey, kind, artifactKey, inputsDigest, data)
	return data, true
}

// Set writes through to both layers.
func (h *HybridStore) Set(projectKey, kind, artifactKey, inputsDigest string, value []byte) error {
	_ = h.front.Set(projectKey, kind, artifactKey, inputsDigest, value)
	return h.back.Set(projectKey, kind, artifactKey, inputsDigest, value)
}

func (h *HybridStore) Close() error {
	return errors.Join(h.front.Close(), h.back.Close())
}
