// Package models holds the rate limiting vocabulary shared by the bucket
// stores, the limiter and its middleware.
package models

import "time"

// EndpointClass groups routes that share one limit.
type EndpointClass string

const (
	// ClassAuth covers sign-up and sign-in.
	ClassAuth EndpointClass = "auth"
	// ClassCheckout covers order submission.
	ClassCheckout EndpointClass = "checkout"
	// ClassContact covers the public contact form.
	ClassContact EndpointClass = "contact"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassCheckout, ClassContact:
		return true
	}
	return false
}

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one bucket check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when denied
}

// RateLimitExceededResponse is the API response when a limit is exceeded.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// BucketKey scopes a client identifier to an endpoint class.
func BucketKey(class EndpointClass, identifier string) string {
	return "ratelimit:" + string(class) + ":" + identifier
}
