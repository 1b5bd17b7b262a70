package main

import (
	"log/slog"
	"net/http"

	"storefront/internal/platform/config"
	"storefront/internal/ratelimit"
	rlMetrics "storefront/internal/ratelimit/metrics"
	rlMiddleware "storefront/internal/ratelimit/middleware"
	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/store/bucket"
)

// newThrottle shares buckets through Redis when it is configured so every
// replica counts against the same window.
func newThrottle(cfg config.RateLimit, in *infra, log *slog.Logger) func(http.Handler) http.Handler {
	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if in.redis != nil {
		buckets = bucket.NewRedisBucketStore(in.redis.Client)
	}
	limiter := ratelimit.NewLimiter(buckets, map[models.EndpointClass]models.Limit{
		models.ClassAuth:     {Requests: cfg.AuthPerWindow, Window: cfg.Window},
		models.ClassCheckout: {Requests: cfg.CheckoutPerWindow, Window: cfg.Window},
		models.ClassContact:  {Requests: cfg.ContactPerWindow, Window: cfg.Window},
	})
	mw := rlMiddleware.New(limiter, log,
		rlMiddleware.WithDisabled(!cfg.Enabled),
		rlMiddleware.WithMetrics(rlMetrics.New()),
	)
	return mw.Guard(rlMiddleware.StorefrontRoutes())
}
