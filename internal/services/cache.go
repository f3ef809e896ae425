package services

import (
	"context"
	"sync"
	"time"
)

const (
	SareesKey    = "sarees"
	OrdersKey    = "orders"
	CustomersKey = "customers"

	SareesTTL    = 30 * time.Second
	OrdersTTL    = 15 * time.Second
	CustomersTTL = 30 * time.Second
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// QueryCache holds list results until they expire or a mutation invalidates
// their key. Each key carries a generation that Invalidate bumps, so a load
// that started before an invalidation is never stored.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64
	now     func() time.Time
}

func NewQueryCache() *QueryCache {
	return NewQueryCacheWithClock(time.Now)
}

// NewQueryCacheWithClock is for tests that need to move time forward.
func NewQueryCacheWithClock(now func() time.Time) *QueryCache {
	return &QueryCache{
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
		now:     now,
	}
}

func (c *QueryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *QueryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(ttl)}
}

func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.gens[k]++
	}
}

func (c *QueryCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// setIfCurrent stores value only when key has not been invalidated since gen
// was read.
func (c *QueryCache) setIfCurrent(key string, gen uint64, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(ttl)}
	return true
}

func cached[T any](ctx context.Context, c *QueryCache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.generation(key)
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	c.setIfCurrent(key, gen, value, ttl)
	return value, nil
}
