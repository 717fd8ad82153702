// Package cache stores per-file index snapshots so unchanged files are not
// parsed again.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/wraith/pkg/deadcode"
)

// formatVersion is mixed into every content hash; bump it when the indexer
// output for unchanged input changes.
const formatVersion = "wraith-index-v2"

// Cache provides file-based caching of index snapshots.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is the on-disk form of one cached file.
type Entry struct {
	Hash      string                 `json:"hash"`
	Timestamp time.Time              `json:"timestamp"`
	Snapshot  *deadcode.FileSnapshot `json:"snapshot"`
}

// New creates a new cache instance. A ttlHours of 0 disables expiry.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return Disabled(), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Disabled returns a cache that never hits and never stores.
func Disabled() *Cache {
	return &Cache{enabled: false}
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ContentHash identifies file content indexed under a plugin chain. Either
// changing invalidates the entry because plugins decide ignore flags and
// synthetic references at indexing time.
func ContentHash(content []byte, fingerprint string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(formatVersion))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(fingerprint))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the snapshot stored for path if its hash matches and it has
// not expired.
func (c *Cache) Get(path, hash string) (*deadcode.FileSnapshot, bool) {
	if !c.Enabled() {
		return nil, false
	}

	file := c.keyPath(path)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Hash != hash || entry.Snapshot == nil || entry.Snapshot.Path != path {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(file)
		return nil, false
	}

	return entry.Snapshot, true
}

// Put stores the snapshot for path. The write goes through a temporary file
// so concurrent readers never see a partial entry.
func (c *Cache) Put(path, hash string, snap *deadcode.FileSnapshot) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(Entry{Hash: hash, Timestamp: time.Now(), Snapshot: snap})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), c.keyPath(path))
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(path string) error {
	if !c.Enabled() {
		return nil
	}
	err := os.Remove(c.keyPath(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	// Use BLAKE3 hash of key for filename to avoid path issues
	return filepath.Join(c.dir, HashBytes([]byte(key))+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.Enabled() {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
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
