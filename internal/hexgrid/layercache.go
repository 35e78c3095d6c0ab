package hexgrid

import (
	"sync"
	"sync/atomic"
	"time"
)

// LayerCache is a concurrent-safe LRU cache with TTL expiration for
// serialized layer responses, keyed by the request parameters that produced
// them. Field generation is deterministic, so a cached layer never goes
// stale for correctness reasons; the TTL only bounds memory for rarely
// repeated viewports.
type LayerCache struct {
	mu         sync.RWMutex
	entries    map[string]*layerCacheEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type layerCacheEntry struct {
	data      []byte
	createdAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewLayerCache creates a LayerCache with the given capacity and TTL.
func NewLayerCache(maxEntries int, ttl time.Duration) *LayerCache {
	return &LayerCache{
		entries:    make(map[string]*layerCacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get retrieves a cached layer. Returns nil on miss or expiration.
func (c *LayerCache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}

	// Check TTL.
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil
	}

	// Move to back (most recently used).
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.data
}

// Put stores a layer in the cache, evicting the oldest entry if at capacity.
func (c *LayerCache) Put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// If key already exists, update in place and move to back.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = &layerCacheEntry{data: data, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	// Evict from front if at capacity.
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &layerCacheEntry{data: data, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Stats returns cache performance statistics.
func (c *LayerCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// removeFromOrder removes a key from the LRU order slice.
func (c *LayerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
