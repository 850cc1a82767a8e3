// Package postingcache caches raw posting detail JSON in a key-value store.
package postingcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/jobsift/internal/db"
	"github.com/kailas-cloud/jobsift/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "posting:"

// fetcher is the wrapped detail source.
type fetcher interface {
	Fetch(ctx context.Context, externalPath string) ([]byte, error)
}

// store is the consumer interface for the posting cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedFetcher serves posting details from the store when present and
// falls back to the inner fetcher otherwise. Store failures never fail a fetch.
type CachedFetcher struct {
	inner      fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	group      singleflight.Group
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns the cached detail of externalPath or fetches and caches it.
// Concurrent misses for the same path share one upstream request.
func (c *CachedFetcher) Fetch(ctx context.Context, externalPath string) ([]byte, error) {
	key := c.cacheKey(externalPath)

	if data, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return data, nil
	}

	c.incCache("miss")

	// The shared fetch outlives any single caller; each caller still honors
	// its own cancellation.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		data, err := c.inner.Fetch(shared, externalPath)
		if err != nil {
			return nil, err
		}
		c.putToCache(shared, key, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch posting: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetch posting: %w", res.Err)
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops the cached detail of externalPath.
func (c *CachedFetcher) Invalidate(ctx context.Context, externalPath string) error {
	if err := c.store.Del(ctx, c.cacheKey(externalPath)); err != nil {
		return fmt.Errorf("invalidate posting: %w", err)
	}
	return nil
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedFetcher) cacheKey(externalPath string) string {
	h := sha256.Sum256([]byte(externalPath))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached posting", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	if !json.Valid(data) {
		c.logger.Warn("Dropping corrupt cached posting", zap.String("key", key))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop cached posting", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	return data, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, data []byte) {
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache posting", zap.String("key", key), zap.Error(err))
	}
}
