package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type RateLimiter interface {
	Check(ctx context.Context, class models.EndpointClass, identifier string) (*models.RateLimitResult, error)
}

// Route identifies a throttled endpoint by method and exact path.
type Route struct {
	Method string
	Path   string
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through (local demos, e2e).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) { m.metrics = mt }
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Guard throttles the listed routes per client IP and passes every other
// request through. It must run after metadata.ClientMetadata. Limiter
// failures let the request through.
func (m *Middleware) Guard(routes map[Route]models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class, guarded := routes[Route{Method: r.Method, Path: r.URL.Path}]
			if m.disabled || !guarded {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			result, err := m.limiter.Check(ctx, class, requestcontext.ClientIP(ctx))
			if err != nil {
				m.metrics.IncrementCheckErrors()
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementRejected(string(class))
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil || result.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

// StorefrontRoutes maps the throttled storefront endpoints to their class.
func StorefrontRoutes() map[Route]models.EndpointClass {
	return map[Route]models.EndpointClass{
		{Method: http.MethodPost, Path: "/auth/signup"}:    models.ClassAuth,
		{Method: http.MethodPost, Path: "/auth/signin"}:    models.ClassAuth,
		{Method: http.MethodPost, Path: "/auth/federated"}: models.ClassAuth,
		{Method: http.MethodPost, Path: "/checkout"}:       models.ClassCheckout,
		{Method: http.MethodPost, Path: "/contacts"}:       models.ClassContact,
	}
}
