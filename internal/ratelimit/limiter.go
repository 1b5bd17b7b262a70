// Package ratelimit throttles the abuse-prone storefront endpoints per
// client with a sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/ratelimit/models"
)

type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter applies one Limit per endpoint class. Classes without a limit
// are never throttled.
type Limiter struct {
	buckets BucketStore
	limits  map[models.EndpointClass]models.Limit
}

func NewLimiter(buckets BucketStore, limits map[models.EndpointClass]models.Limit) *Limiter {
	return &Limiter{buckets: buckets, limits: limits}
}

func (l *Limiter) Check(ctx context.Context, class models.EndpointClass, identifier string) (*models.RateLimitResult, error) {
	limit, ok := l.limits[class]
	if !ok || limit.Requests <= 0 {
		return &models.RateLimitResult{Allowed: true}, nil
	}
	res, err := l.buckets.Allow(ctx, models.BucketKey(class, identifier), limit.Requests, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("check %s limit: %w", class, err)
	}
	return res, nil
}
