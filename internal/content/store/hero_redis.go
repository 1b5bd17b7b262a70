package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/content/models"
)

const heroCacheKey = "content:hero"

// HeroStore is the source of truth behind the cache.
type HeroStore interface {
	Get(ctx context.Context) (*models.Hero, error)
	Put(ctx context.Context, h *models.Hero) error
}

// RedisCache serves hero reads from Redis for up to ttl. Writes go to the
// backing store first and then drop the cached copy. Redis failures fall
// through to the backing store.
type RedisCache struct {
	inner  HeroStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(inner HeroStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context) (*models.Hero, error) {
	raw, err := c.client.Get(ctx, heroCacheKey).Bytes()
	if err == nil {
		var h models.Hero
		if jsonErr := json.Unmarshal(raw, &h); jsonErr == nil {
			return &h, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "hero cache read failed", "error", err)
	}

	h, err := c.inner.Get(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(h); err == nil {
		if err := c.client.Set(ctx, heroCacheKey, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "hero cache write failed", "error", err)
		}
	}
	return h, nil
}

func (c *RedisCache) Put(ctx context.Context, h *models.Hero) error {
	if err := c.inner.Put(ctx, h); err != nil {
		return err
	}
	if err := c.client.Del(ctx, heroCacheKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "hero cache invalidation failed", "error", err)
	}
	return nil
}
