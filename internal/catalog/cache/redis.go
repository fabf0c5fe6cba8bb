// Package cache holds a read-through Redis copy of single-product lookups.
// Cache failures are logged and otherwise ignored: the store stays the
// source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"sonicpods/internal/catalog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	DefaultTTL    = 5 * time.Minute
	idKeyPrefix   = "sonicpods:product:id:"
	slugKeyPrefix = "sonicpods:product:slug:"
)

func idKey(id string) string     { return idKeyPrefix + id }
func slugKey(slug string) string { return slugKeyPrefix + slug }

// lookupKey maps a requested key onto the namespace the store would
// resolve it in: UUID-shaped keys are ids, everything else is a slug.
func lookupKey(key string) string {
	if len(key) == 36 && uuid.Validate(key) == nil {
		return idKey(key)
	}
	return slugKey(key)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get looks key up as an id or a slug, by its shape.
func (c *RedisCache) Get(ctx context.Context, key string) (catalog.Product, bool) {
	redisKey := lookupKey(key)
	data, err := c.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("product cache read failed", "key", key, "error", err)
		}
		return catalog.Product{}, false
	}

	var p catalog.Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("product cache entry corrupt", "key", key, "error", err)
		_ = c.client.Del(ctx, redisKey).Err()
		return catalog.Product{}, false
	}
	return p, true
}

// Set stores p under both its id and its slug.
func (c *RedisCache) Set(ctx context.Context, p catalog.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("product cache encode failed", "product_id", p.ID, "error", err)
		return
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, idKey(p.ID), data, c.ttl)
	if p.Slug != "" {
		pipe.Set(ctx, slugKey(p.Slug), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("product cache write failed", "product_id", p.ID, "error", err)
	}
}

// Invalidate drops every key a product version was cached under.
func (c *RedisCache) Invalidate(ctx context.Context, versions ...catalog.Product) {
	keys := make([]string, 0, 2*len(versions))
	for _, p := range versions {
		if p.ID != "" {
			keys = append(keys, idKey(p.ID))
		}
		if p.Slug != "" {
			keys = append(keys, slugKey(p.Slug))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("product cache invalidate failed", "keys", keys, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (catalog.Product, bool) { return catalog.Product{}, false }
func (Nop) Set(context.Context, catalog.Product)                {}
func (Nop) Invalidate(context.Context, ...catalog.Product)      {}
