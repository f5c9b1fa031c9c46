package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/fxrate/pkg/cache"
	"github.com/amirasaad/fxrate/pkg/currency"
	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements cache.RateCache on top of Redis so several
// replicas share snapshots. Expiry against the TTL is decided from the
// stored timestamp; Redis itself only drops keys once the retention
// window has passed.
type RedisCache struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewRedisCache creates a RedisCache using an existing client.
func NewRedisCache(
	client *redis.Client,
	prefix string,
	ttl, retention time.Duration,
	logger *slog.Logger,
) *RedisCache {
	return &RedisCache{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// NewRedisCacheFromURL parses a redis:// URL and creates a RedisCache.
func NewRedisCacheFromURL(
	url, prefix string,
	ttl, retention time.Duration,
	logger *slog.Logger,
) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(redis.NewClient(opt), prefix, ttl, retention, logger), nil
}

func (r *RedisCache) key(base currency.Code) string {
	return r.prefix + base.String()
}

func (r *RedisCache) load(ctx context.Context, base currency.Code) (core.CacheEntry, bool) {
	data, err := r.client.Get(ctx, r.key(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "base", base)
		return core.CacheEntry{}, false
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "base", base, "error", err)
		return core.CacheEntry{}, false
	}
	var entry core.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.logger.Error("Redis cache unmarshal error", "base", base, "error", err)
		return core.CacheEntry{}, false
	}
	return entry, true
}

// Read returns the table for base unless it is missing or older than the TTL.
func (r *RedisCache) Read(ctx context.Context, base currency.Code) (core.RateTable, bool) {
	entry, ok := r.load(ctx, base)
	if !ok {
		return core.RateTable{}, false
	}
	if r.now().Sub(entry.StoredAt) > r.ttl {
		r.logger.Debug("Redis cache entry expired", "base", base, "stored_at", entry.StoredAt)
		return core.RateTable{}, false
	}
	return entry.Table, true
}

// ReadStale returns the stored table regardless of the TTL.
func (r *RedisCache) ReadStale(ctx context.Context, base currency.Code) (core.RateTable, bool) {
	entry, ok := r.load(ctx, base)
	if !ok {
		return core.RateTable{}, false
	}
	return entry.Table, true
}

// Write replaces the entry for base.
func (r *RedisCache) Write(ctx context.Context, base currency.Code, table core.RateTable) error {
	data, err := json.Marshal(core.CacheEntry{Table: table, StoredAt: r.now()})
	if err != nil {
		r.logger.Error("Redis cache marshal error", "base", base, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(base), data, r.retention).Err(); err != nil {
		r.logger.Error("Redis cache set error", "base", base, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "base", base, "rates", len(table.Rates))
	return nil
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ cache.RateCache = (*RedisCache)(nil)
