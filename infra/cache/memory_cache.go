package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/fxrate/pkg/cache"
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
)

// MemoryCache implements cache.RateCache with in-process maps.
//
// Entries that outlive the TTL are evicted from the fresh map on Read but
// stay in the stale map until the retention window passes, so a degraded
// read can still serve them.
type MemoryCache struct {
	mu        sync.RWMutex
	fresh     map[currency.Code]core.CacheEntry
	stale     map[currency.Code]core.CacheEntry
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates a cache with the given TTL. A zero retention keeps
// stale entries for the life of the process.
func NewMemoryCache(ttl, retention time.Duration, opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		fresh:     make(map[currency.Code]core.CacheEntry),
		stale:     make(map[currency.Code]core.CacheEntry),
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the table for base unless it is missing or older than the TTL.
func (c *MemoryCache) Read(_ context.Context, base currency.Code) (core.RateTable, bool) {
	c.mu.RLock()
	entry, ok := c.fresh[base]
	c.mu.RUnlock()
	if !ok {
		return core.RateTable{}, false
	}

	if c.now().Sub(entry.StoredAt) > c.ttl {
		c.mu.Lock()
		// A concurrent Write may have replaced the entry since the RLock.
		if cur, ok := c.fresh[base]; ok && cur.StoredAt.Equal(entry.StoredAt) {
			delete(c.fresh, base)
		}
		c.mu.Unlock()
		return core.RateTable{}, false
	}
	return entry.Table.Clone(), true
}

// ReadStale returns the last written table for base regardless of the TTL.
func (c *MemoryCache) ReadStale(_ context.Context, base currency.Code) (core.RateTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.stale[base]
	if !ok {
		return core.RateTable{}, false
	}
	if c.retention > 0 && c.now().Sub(entry.StoredAt) > c.retention {
		return core.RateTable{}, false
	}
	return entry.Table.Clone(), true
}

// Write replaces any entry for base.
func (c *MemoryCache) Write(_ context.Context, base currency.Code, table core.RateTable) error {
	table = table.Clone()
	entry := core.CacheEntry{Table: table, StoredAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh[base] = entry
	c.stale[base] = entry
	return nil
}

var _ cache.RateCache = (*MemoryCache)(nil)
