package storage

import (
	"log/slog"
	"sync"

	"github.com/IshaanNene/NewsGoat/internal/corpus"
	"github.com/IshaanNene/NewsGoat/internal/types"
)

// Cache remembers every article fetched so far, keyed by URL, so runs can
// skip the network for pages already seen. It is not authoritative and may
// drift from the master store. The whole file is rewritten on every Add.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries *corpus.Collection
	logger  *slog.Logger
}

// OpenCache loads the cache at path, creating an empty file if needed.
func OpenCache(path string, logger *slog.Logger) (*Cache, error) {
	c := &Cache{
		path:   path,
		logger: logger.With("component", "cache"),
	}

	// touching the file through a transaction creates it when missing
	err := Update(path, func(current *corpus.Collection) (*corpus.Collection, error) {
		c.entries = current
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cache loaded", "path", path, "entries", c.entries.Len())
	return c, nil
}

// Get returns the cached record for url.
func (c *Cache) Get(url string) (*types.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(url)
}

// Has reports whether url is cached.
func (c *Cache) Has(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Has(url)
}

// Add stores rec under url and persists the cache.
func (c *Cache) Add(url string, rec *types.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *corpus.Collection
	err := Update(c.path, func(current *corpus.Collection) (*corpus.Collection, error) {
		current.Set(url, rec)
		next = current
		return current, nil
	})
	if err != nil {
		return err
	}
	c.entries = next
	return nil
}

// Len returns the number of cached articles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Snapshot returns a copy of the cached collection.
func (c *Cache) Snapshot() *corpus.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Clone()
}
