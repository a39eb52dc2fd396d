package server

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a process-wide completion request rate using a token
// bucket. It guards the outbound provider quota, not individual clients.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing requestsPerMin completions
// per minute with a burst of the same size. A requestsPerMin of 0 means
// unlimited.
func NewRateLimiter(requestsPerMin int) *RateLimiter {
	rl := &RateLimiter{}
	if requestsPerMin > 0 {
		r := rate.Limit(float64(requestsPerMin) / 60.0)
		rl.limiter = rate.NewLimiter(r, requestsPerMin)
	}
	return rl
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (rl *RateLimiter) Allow() bool {
	if rl == nil || rl.limiter == nil {
		return true
	}
	return rl.limiter.Allow()
}

// Wait blocks until a request is allowed or the context is done. Returns nil
// immediately if rate limiting is disabled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.limiter == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}
