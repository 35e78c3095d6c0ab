package hexgrid

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLayerCache_BasicGetPut(t *testing.T) {
	cache := NewLayerCache(100, time.Hour)

	// Miss on empty cache.
	assert.Nil(t, cache.Get("temperature/40.76/40.75/-73.64/-73.65/9"))

	data := []byte(`{"type":"FeatureCollection"}`)
	cache.Put("temperature/40.76/40.75/-73.64/-73.65/9", data)
	got := cache.Get("temperature/40.76/40.75/-73.64/-73.65/9")
	assert.Equal(t, data, got)

	// Different key is still a miss.
	assert.Nil(t, cache.Get("sea-level/40.76/40.75/-73.64/-73.65/9"))
}

func TestLayerCache_TTLExpiration(t *testing.T) {
	cache := NewLayerCache(100, 50*time.Millisecond)

	cache.Put("k", []byte("layer"))
	assert.NotNil(t, cache.Get("k"))

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, cache.Get("k"))

	// Expired entry should be removed from the map.
	cache.mu.RLock()
	_, exists := cache.entries["k"]
	cache.mu.RUnlock()
	assert.False(t, exists)
}

func TestLayerCache_LRUEviction(t *testing.T) {
	cache := NewLayerCache(3, time.Hour)

	cache.Put("a", []byte("1"))
	cache.Put("b", []byte("2"))
	cache.Put("c", []byte("3"))

	// Cache is full. Adding a fourth should evict "a" (oldest).
	cache.Put("d", []byte("4"))

	assert.Nil(t, cache.Get("a"))
	assert.NotNil(t, cache.Get("b"))
	assert.NotNil(t, cache.Get("c"))
	assert.NotNil(t, cache.Get("d"))
}

func TestLayerCache_LRUEviction_AccessOrder(t *testing.T) {
	cache := NewLayerCache(3, time.Hour)

	cache.Put("a", []byte("1"))
	cache.Put("b", []byte("2"))
	cache.Put("c", []byte("3"))

	// Access "a" to move it to back.
	cache.Get("a")

	// Now "b" is the oldest. Adding "d" should evict "b".
	cache.Put("d", []byte("4"))

	assert.NotNil(t, cache.Get("a"))
	assert.Nil(t, cache.Get("b"))
	assert.NotNil(t, cache.Get("c"))
	assert.NotNil(t, cache.Get("d"))
}

func TestLayerCache_UpdateInPlace(t *testing.T) {
	cache := NewLayerCache(3, time.Hour)

	cache.Put("k", []byte("old"))
	cache.Put("k", []byte("new"))
	assert.Equal(t, []byte("new"), cache.Get("k"))

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
}

func TestLayerCache_ConcurrentAccess(t *testing.T) {
	cache := NewLayerCache(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Put(key, []byte("data"))
			cache.Get(key)
		}(i)
	}
	wg.Wait()

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.Entries, 1000)
	assert.True(t, stats.Hits+stats.Misses > 0)
}

func TestLayerCache_Stats(t *testing.T) {
	cache := NewLayerCache(10, time.Hour)

	cache.Get("missing")
	cache.Put("k", []byte("v"))
	cache.Get("k")

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 10, stats.MaxEntries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
}
