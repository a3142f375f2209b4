// Package cache stores analysis artifacts keyed by project, artifact kind,
// artifact key and the digest of the inputs that produced them.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/parkrevil/firebat-sub000/pkg/config"
)

// ErrMiss is returned by GetJSON when no valid entry exists.
var ErrMiss = errors.New("cache miss")

// Store is an artifact cache. A stored value is returned only for the exact
// inputs digest it was stored with. Implementations are safe for concurrent use.
type Store interface {
	Get(projectKey, kind, artifactKey, inputsDigest string) ([]byte, bool)
	Set(projectKey, kind, artifactKey, inputsDigest string, value []byte) error
	Close() error
}

// Entry represents a cached analysis result.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// valid reports whether the entry matches the digest and is within ttl.
// A zero ttl never expires.
func (e *Entry) valid(hash string, ttl time.Duration) bool {
	if e.Hash != hash {
		return false
	}
	return ttl <= 0 || time.Since(e.Timestamp) <= ttl
}

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// entryKey joins the addressing parts into one key.
func entryKey(projectKey, kind, artifactKey string) string {
	return projectKey + "\x00" + kind + "\x00" + artifactKey
}

// GetJSON decodes a cached value into v, returning ErrMiss when there is
// no entry for the digest.
func GetJSON(s Store, projectKey, kind, artifactKey, inputsDigest string, v any) error {
	data, ok := s.Get(projectKey, kind, artifactKey, inputsDigest)
	if !ok {
		return ErrMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: corrupt entry: %v", ErrMiss, err)
	}
	return nil
}

// SetJSON stores the JSON encoding of v.
func SetJSON(s Store, projectKey, kind, artifactKey, inputsDigest string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return s.Set(projectKey, kind, artifactKey, inputsDigest, data)
}

// Open builds the store selected by cfg. A disabled cache yields a store
// that never hits. Relative directories are resolved against root.
func Open(cfg config.CacheConfig, root string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return Nop{}, nil
	}

	ttl := time.Duration(cfg.TTL) * time.Hour
	dir := cfg.Dir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	switch cfg.Backend {
	case config.CacheBackendMemory:
		return NewMemoryStore(ttl), nil
	case config.CacheBackendBadger:
		back, err := NewBadgerStore(BadgerOptions{Path: filepath.Join(dir, "badger"), TTL: ttl, Logger: logger})
		if err != nil {
			return nil, err
		}
		return NewHybridStore(NewMemoryStore(ttl), back), nil
	case config.CacheBackendFile, "":
		back, err := NewFileStore(dir, ttl)
		if err != nil {
			return nil, err
		}
		return NewHybridStore(NewMemoryStore(ttl), back), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop is a store that never hits.
type Nop struct{}

func (Nop) Get(string, string, string, string) ([]byte, bool) { return nil, false }

func (Nop) Set(string, string, string, string, []byte) error { return nil }

func (Nop) Close() error { return nil }
