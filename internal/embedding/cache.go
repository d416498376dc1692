package embedding

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a digest-keyed LRU cache for sketch embeddings with a capacity
// bound and time-based expiry. A hit bumps the entry to most-recently-used;
// expiry is measured from insertion and takes precedence over recency.
// Safe for use from concurrent search requests.
type Cache struct {
	lru *expirable.LRU[string, []float32]
}

// NewCache creates a cache holding at most size entries, each valid for ttl
// after insertion.
func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// GetOrCompute returns the cached vector for digest when present and fresh.
// Otherwise it runs compute and inserts the result at the most-recently-used
// position, evicting the least-recently-used entry past capacity. The
// computation runs outside the cache's internal lock, so computes for
// different digests may proceed concurrently. The returned bool reports
// whether the vector came from the cache. Vectors are copied on both paths
// so callers can never mutate cached state.
func (c *Cache) GetOrCompute(digest string, compute func() ([]float32, error)) ([]float32, bool, error) {
	if cached, ok := c.lru.Get(digest); ok {
		return cloneVector(cached), true, nil
	}
	vec, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.lru.Add(digest, cloneVector(vec))
	return vec, false, nil
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
