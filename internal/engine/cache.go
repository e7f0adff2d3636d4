// cache.go is the in-process L1 cache of rendered download documents.
// Entries are keyed by template ID and update time, so a re-saved template
// misses automatically.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// maxEntries bounds the L1 cache. When full, the whole map is dropped; the
// L2 cache in Valkey absorbs the refill.
const maxEntries = 512

type cacheKey struct {
	id        string
	updatedAt int64
}

type documentCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]byte
}

func newDocumentCache() *documentCache {
	return &documentCache{
		entries: make(map[cacheKey][]byte),
	}
}

func (c *documentCache) get(id string, updatedAt time.Time) []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[cacheKey{id: id, updatedAt: updatedAt.UnixNano()}]
}

func (c *documentCache) put(id string, updatedAt time.Time, doc []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxEntries {
		c.entries = make(map[cacheKey][]byte)
	}
	c.entries[cacheKey{id: id, updatedAt: updatedAt.UnixNano()}] = doc
	slog.Debug("document cached", "id", id, "size", len(c.entries))
}

// invalidate removes all cached versions of a template.
func (c *documentCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("document cache invalidated", "id", id)
}

func (c *documentCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
