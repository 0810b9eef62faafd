package embedding

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Cache is a content-addressed embedding memo table keyed by sha256(text).
// It is loaded once on construction and flushed to a single gob file on every Set.
// Persistence is best-effort: read and write failures never reach the caller.
type Cache struct {
	path    string
	entries map[string][]float32
	mu      sync.RWMutex
	logger  *zap.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets a logger for swallowed I/O errors.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// NewCache returns a cache backed by the file at path. A missing or corrupt file
// yields an empty cache. An empty path keeps the cache in memory only.
func NewCache(path string, opts ...CacheOption) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string][]float32),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.load(); err != nil {
		c.logger.Debug("embedding cache load skipped", zap.String("path", path), zap.Error(err))
		c.entries = make(map[string][]float32)
	}
	return c
}

// CacheKey returns the hex-encoded SHA-256 of text.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for text if present.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[CacheKey(text)]
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores the embedding for text and persists the whole table.
func (c *Cache) Set(text string, vec []float32) {
	stored := make([]float32, len(vec))
	copy(stored, vec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[CacheKey(text)] = stored
	if err := c.saveLocked(); err != nil {
		c.logger.Debug("embedding cache save failed", zap.String("path", c.path), zap.Error(err))
	}
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Path returns the backing file path (empty for memory-only caches).
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) load() error {
	if c.path == "" {
		return nil
	}
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	entries := make(map[string][]float32)
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("decode cache file: %w", err)
	}
	c.entries = entries
	return nil
}

// saveLocked writes the table to a temp file and renames it into place.
func (c *Cache) saveLocked() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tempPath := c.path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(c.entries); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, c.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
