package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through Redis cache. Concurrent misses for the same key are
// collapsed into one load. A nil client disables caching but keeps the
// singleflight collapsing.
type Cache struct {
	rdb    *redis.Client
	sf     singleflight.Group
	logger *zap.Logger
}

// New builds a cache over rdb, which may be nil.
func New(rdb *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{rdb: rdb, logger: logger}
}

// GetOrLoad returns the cached bytes for key or calls load and stores the result.
// Redis failures degrade to calling load directly.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c.rdb != nil {
		b, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil && ttl > 0 {
			if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
				c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Namespace returns the current generation prefix for ns. Keys built on it are
// invalidated together by Bump.
func (c *Cache) Namespace(ctx context.Context, ns string) string {
	if c.rdb == nil {
		return ns + ":v0"
	}
	gen, err := c.rdb.Get(ctx, versionKey(ns)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache namespace read failed", zap.String("namespace", ns), zap.Error(err))
	}
	return fmt.Sprintf("%s:v%d", ns, gen)
}

// Bump invalidates every key under ns.
func (c *Cache) Bump(ctx context.Context, ns string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, versionKey(ns)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("namespace", ns), zap.Error(err))
	}
}

func versionKey(ns string) string {
	return "cachever:" + ns
}
