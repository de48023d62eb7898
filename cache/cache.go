// Package cache implements C5: the bounded LRU compiled-condition cache,
// keyed by the structural normalizer's output string, with per-key
// single-flight build coalescing (spec §4.5, §8 P5).
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/filterql"
)

// Stats is a snapshot of the cache's monotonic counters (spec §4.5:
// "size, maxSize, hits, misses").
type Stats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
}

// Cache is the process-wide compiled-Condition cache. The zero value is not
// usable; construct with New.
type Cache struct {
	maxSize int
	store   *lru.Cache[string, filterql.Condition]
	flight  singleflight.Group
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New constructs a Cache honoring policy.MaxSize (falling back to
// filterql.DefaultCachePolicy when MaxSize <= 0).
func New(policy filterql.CachePolicy) (*Cache, error) {
	size := policy.MaxSize
	if size <= 0 {
		size = filterql.DefaultCachePolicy().MaxSize
	}
	store, err := lru.New[string, filterql.Condition](size)
	if err != nil {
		return nil, err
	}
	return &Cache{maxSize: size, store: store}, nil
}

// GetOrBuild returns the Condition stored under key, building it with build
// on a miss. Concurrent callers for the same key observe exactly one call to
// build (spec §4.5: "on miss, at most one builder runs per key; concurrent
// requests for the same key wait for that build and observe the same
// result").
func (c *Cache) GetOrBuild(key string, build func() (filterql.Condition, error)) (filterql.Condition, error) {
	if cond, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		return cond, nil
	}

	c.misses.Add(1)
	v, err, _ := c.flight.Do(key, func() (any, error) {
		// A concurrent Do call for this key may have already populated the
		// store between our lookup above and entering the singleflight
		// group; re-check before paying for another build.
		if cond, ok := c.store.Get(key); ok {
			return cond, nil
		}
		cond, err := build()
		if err != nil {
			return nil, err
		}
		c.store.Add(key, cond)
		return cond, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(filterql.Condition), nil
}

// Get performs a lookup only, without building on a miss. It does not
// affect the hit/miss counters: GetOrBuild is the metered entry point.
func (c *Cache) Get(key string) (filterql.Condition, bool) {
	return c.store.Get(key)
}

// Clear evicts every entry (spec §4.5: "the cache is process-wide state with
// an explicit clear() lifecycle hook"). It does not reset the hit/miss
// counters, which are cumulative for the cache's lifetime.
func (c *Cache) Clear() {
	c.store.Purge()
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Size:    c.store.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
