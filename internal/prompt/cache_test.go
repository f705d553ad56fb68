package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newClockedCache := func() (*contentCache, *time.Time) {
		current := now
		cache := newContentCache(8)
		cache.clock = func() time.Time { return current }
		return cache, &current
	}

	t.Run("fresh entry hits", func(t *testing.T) {
		cache, clock := newClockedCache()
		cache.set(cacheKey("charter", ""), "content v1")

		*clock = now.Add(2 * time.Minute)
		content, ok := cache.get(cacheKey("charter", ""), 5*time.Minute)
		assert.True(t, ok)
		assert.Equal(t, "content v1", content)
	})

	t.Run("entry at or past max age misses", func(t *testing.T) {
		cache, clock := newClockedCache()
		cache.set(cacheKey("charter", ""), "content v1")

		*clock = now.Add(5 * time.Minute)
		_, ok := cache.get(cacheKey("charter", ""), 5*time.Minute)
		assert.False(t, ok)
	})

	t.Run("zero max age always misses", func(t *testing.T) {
		cache, _ := newClockedCache()
		cache.set(cacheKey("charter", ""), "content v1")

		_, ok := cache.get(cacheKey("charter", ""), 0)
		assert.False(t, ok)
	})

	t.Run("one entry serves different staleness bounds", func(t *testing.T) {
		cache, clock := newClockedCache()
		cache.set(cacheKey("charter", ""), "content v1")

		*clock = now.Add(3 * time.Minute)
		_, strict := cache.get(cacheKey("charter", ""), time.Minute)
		_, lenient := cache.get(cacheKey("charter", ""), 10*time.Minute)
		assert.False(t, strict)
		assert.True(t, lenient)
	})

	t.Run("transform identity separates entries", func(t *testing.T) {
		cache, _ := newClockedCache()
		cache.set(cacheKey("charter", ""), "raw")
		cache.set(cacheKey("charter", "headings_only"), "# Title")

		raw, _ := cache.get(cacheKey("charter", ""), time.Hour)
		transformed, _ := cache.get(cacheKey("charter", "headings_only"), time.Hour)
		assert.Equal(t, "raw", raw)
		assert.Equal(t, "# Title", transformed)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("capacity evicts least recently used", func(t *testing.T) {
		cache := newContentCache(2)
		cache.set(cacheKey("a", ""), "1")
		cache.set(cacheKey("b", ""), "2")
		cache.set(cacheKey("c", ""), "3")

		_, ok := cache.get(cacheKey("a", ""), time.Hour)
		assert.False(t, ok)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("missing key misses", func(t *testing.T) {
		cache, _ := newClockedCache()
		_, ok := cache.get(cacheKey("nonexistent", ""), time.Hour)
		assert.False(t, ok)
	})
}
