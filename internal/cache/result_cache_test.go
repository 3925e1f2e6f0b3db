package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"legal-rag/internal/cache"
	"legal-rag/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResult(confidence float64) *domain.RAGResult {
	return &domain.RAGResult{Confidence: confidence}
}

func TestResultCache_GetSet(t *testing.T) {
	c := cache.New(10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", newResult(0.9))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	c := cache.New(10, 10*time.Millisecond)

	c.Set("k", newResult(0.5))
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must be treated as absent")
	assert.Equal(t, 0, c.Size(), "expired entry is dropped on read")
}

func TestResultCache_EvictsOldestAtCapacity(t *testing.T) {
	const maxSize = 5
	c := cache.New(maxSize, time.Minute)

	for i := 0; i < maxSize+1; i++ {
		c.Set(fmt.Sprintf("k-%d", i), newResult(float64(i)))
	}

	assert.Equal(t, maxSize, c.Size())

	_, ok := c.Get("k-0")
	assert.False(t, ok, "single oldest-inserted key must be evicted")

	for i := 1; i <= maxSize; i++ {
		_, ok := c.Get(fmt.Sprintf("k-%d", i))
		assert.True(t, ok, "newer keys survive eviction")
	}
}

func TestResultCache_OverwriteDoesNotGrow(t *testing.T) {
	c := cache.New(2, time.Minute)

	c.Set("k", newResult(0.1))
	c.Set("k", newResult(0.2))

	assert.Equal(t, 1, c.Size())
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
}

func TestResultCache_Stats(t *testing.T) {
	c := cache.New(10, time.Minute)

	c.Set("k", newResult(0.9))
	_, _ = c.Get("k")
	_, _ = c.Get("absent")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	c := cache.New(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("k-%d", (n+j)%30)
				c.Set(key, newResult(0.5))
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 100)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "quels documents:all", cache.Key("  Quels Documents ?", ""))
	assert.Equal(t, "quels documents:fiscal", cache.Key("Quels documents", "Fiscal"))
	assert.NotEqual(t, cache.Key("q", ""), cache.Key("q", "fiscal"))
}
