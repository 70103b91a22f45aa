package store

import (
	"context"
	"fmt"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/logger"
	"github.com/wonny/rentix/backend/pkg/redis"
)

// cachedPoint is the cache entry; Found=false caches "not published yet"
type cachedPoint struct {
	Found bool                 `json:"found"`
	Point contracts.IndexPoint `json:"point"`
}

// CachedIndexStore is a Redis read-through cache in front of an IndexStore.
// Published values are cached for a day, missing months for a minute.
// Writers call Invalidate after appending so a new canonical value shows up.
type CachedIndexStore struct {
	next   contracts.IndexStore
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedIndexStore wraps next; with Redis disabled every call passes through
func NewCachedIndexStore(next contracts.IndexStore, cache *redis.Cache, log *logger.Logger) *CachedIndexStore {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedIndexStore{
		next:   next,
		cache:  cache,
		logger: log.WithComponent("index-cache"),
	}
}

// GetIndexPoint implements contracts.IndexStore
func (c *CachedIndexStore) GetIndexPoint(ctx context.Context, series contracts.SeriesType, period contracts.Period) (contracts.IndexPoint, bool, error) {
	key := redis.IndexPointKey(string(series), period.String())

	var entry cachedPoint
	found, err := c.cache.Get(ctx, key, &entry)
	if err != nil {
		c.logger.WithError(err).Warn("index cache read failed")
	}
	if found {
		return entry.Point, entry.Found, nil
	}

	p, ok, err := c.next.GetIndexPoint(ctx, series, period)
	if err != nil {
		return p, ok, err
	}

	ttl := redis.TTLDaily
	if !ok {
		ttl = redis.TTLShort
	}
	if err := c.cache.Set(ctx, key, cachedPoint{Found: ok, Point: p}, ttl); err != nil {
		c.logger.WithError(err).Warn("index cache write failed")
	}
	return p, ok, nil
}

// ListBases implements contracts.IndexStore
func (c *CachedIndexStore) ListBases(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexBase, error) {
	var bases []contracts.IndexBase
	err := c.cache.GetOrSet(ctx, redis.IndexBasesKey(string(series)), &bases, redis.TTLLong, func() (interface{}, error) {
		return c.next.ListBases(ctx, series)
	})
	if err != nil {
		return nil, fmt.Errorf("list bases via cache: %w", err)
	}
	return bases, nil
}

// Invalidate drops every cached entry of a series
func (c *CachedIndexStore) Invalidate(ctx context.Context, series contracts.SeriesType) error {
	if _, err := c.cache.DeletePrefix(ctx, redis.SeriesPrefix(string(series))); err != nil {
		return err
	}
	return c.cache.Delete(ctx, redis.IndexBasesKey(string(series)))
}
