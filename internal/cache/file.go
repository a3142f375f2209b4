package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// FileStore keeps one JSON entry file per artifact under dir/<projectKey>.
type FileStore struct {
	dir string
	ttl time.Duration
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl}, nil
}

// Get retrieves a cached entry if the digest matches and it is not expired.
// Expired entries are removed.
func (c *FileStore) Get(projectKey, kind, artifactKey, inputsDigest string) ([]byte, bool) {
	path := c.keyPath(projectKey, kind, artifactKey)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Hash != inputsDigest {
		return nil, false
	}
	if !entry.valid(inputsDigest, c.ttl) {
		os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set stores data in the cache, replacing any previous entry for the artifact.
func (c *FileStore) Set(projectKey, kind, artifactKey, inputsDigest string, value []byte) error {
	entryData, err := json.Marshal(Entry{
		Hash:      inputsDigest,
		Timestamp: time.Now(),
		Data:      value,
	})
	if err != nil {
		return err
	}

	path := c.keyPath(projectKey, kind, artifactKey)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// write then rename so readers never see a partial entry
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Invalidate removes a cache entry.
func (c *FileStore) Invalidate(projectKey, kind, artifactKey string) error {
	err := os.Remove(c.keyPath(projectKey, kind, artifactKey))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *FileStore) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *FileStore) Close() error { return nil }

// keyPath converts a key to a filesystem path.
func (c *FileStore) keyPath(projectKey, kind, artifactKey string) string {
	// Use BLAKE3 hash of key for filename to avoid path issues
	hash := blake3.Sum256([]byte(entryKey(projectKey, kind, artifactKey)))
	project := blake3.Sum256([]byte(projectKey))
	return filepath.Join(c.dir, hex.EncodeToString(project[:8]), hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *FileStore) GetStats() (*Stats, error) {
	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
