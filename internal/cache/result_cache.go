// Package cache provides a TTL and capacity bounded result cache shared by
// the orchestrator and the assistant facade, each with its own instance.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"legal-rag/internal/domain"
)

// entry wraps a cached result with its insertion timestamp.
type entry struct {
	result   *domain.RAGResult
	cachedAt time.Time
}

// Stats holds cache counters.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// ResultCache is a thread-safe in-memory cache for pipeline results.
// Entries expire after a fixed TTL; when capacity is reached, the single
// oldest-by-insertion entry is evicted. No write-path invalidation exists:
// corpus changes can go unseen for up to one TTL window.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string // insertion order, oldest first
	maxSize int
	ttl     time.Duration
	hits    int64
	misses  int64
}

// New creates a result cache with the given capacity and TTL.
func New(maxSize int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]entry),
		order:   make([]string, 0),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Key builds the cache key from the normalized question and its category.
// An empty category maps to "all" so unfiltered and filtered lookups never
// collide.
func Key(question, category string) string {
	if category == "" {
		category = "all"
	}
	return domain.NormalizeQuestion(question) + ":" + strings.ToLower(category)
}

// Get returns the cached result for key, or nil and false when the key is
// absent or its entry has expired.
func (c *ResultCache) Get(key string) (*domain.RAGResult, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	if time.Since(e.cachedAt) > c.ttl {
		c.delete(key)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.result, true
}

// Set stores a result under key, evicting the oldest entry if at capacity.
func (c *ResultCache) Set(key string, result *domain.RAGResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry{result: result, cachedAt: time.Now()}
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = entry{result: result, cachedAt: time.Now()}
	c.order = append(c.order, key)
}

func (c *ResultCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	c.order = make([]string, 0)
}

// Size returns the current entry count.
func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters alongside the current size.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   c.Size(),
	}
}
