package prompt

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry stores fetched (and possibly transformed) document content with
// its fetch timestamp. Staleness is judged per read against the requesting
// dependency's MaxAge, so one entry can serve dependencies with different
// staleness bounds.
type cacheEntry struct {
	content   string
	fetchedAt time.Time
}

// contentCache is a bounded LRU over resolved dependency content, keyed by
// (documentKey, transform name). Safe for concurrent use; concurrent writes
// of the same key are idempotent (last write wins, both values are correct).
type contentCache struct {
	entries *lru.Cache[string, cacheEntry]
	clock   func() time.Time
}

func newContentCache(size int) *contentCache {
	if size <= 0 {
		size = 256
	}
	entries, _ := lru.New[string, cacheEntry](size)
	return &contentCache{
		entries: entries,
		clock:   time.Now,
	}
}

// cacheKey combines document key and transform identity. The separator cannot
// appear in either part.
func cacheKey(documentKey, transform string) string {
	return documentKey + "\x00" + transform
}

// get returns cached content younger than maxAge. A zero maxAge disables
// caching for the requesting dependency, so it always misses.
func (c *contentCache) get(key string, maxAge time.Duration) (string, bool) {
	if maxAge <= 0 {
		return "", false
	}
	entry, ok := c.entries.Get(key)
	if !ok {
		return "", false
	}
	if c.clock().Sub(entry.fetchedAt) >= maxAge {
		return "", false
	}
	return entry.content, true
}

// set stores content with the current timestamp.
func (c *contentCache) set(key, content string) {
	c.entries.Add(key, cacheEntry{content: content, fetchedAt: c.clock()})
}

// Len returns the number of live entries (stale entries included until
// evicted by capacity).
func (c *contentCache) Len() int {
	return c.entries.Len()
}
