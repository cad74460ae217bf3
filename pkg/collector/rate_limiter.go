package collector

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig bounds request throughput against an upstream data source
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests per window
	Window      time.Duration // Sliding window length
}

// DefaultRateLimiterConfig matches the typical broker API limit of
// 4 requests per second.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxRequests: 4,
		Window:      time.Second,
	}
}

// RateLimiter enforces a sliding-window request limit. Timestamps of recent
// requests are kept and pruned as the window slides.
type RateLimiter struct {
	mu       sync.Mutex
	config   RateLimiterConfig
	requests []time.Time
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter with the given config
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:   cfg,
		requests: make([]time.Time, 0, cfg.MaxRequests),
		now:      time.Now,
	}
}

// Allow records a request if the limit permits one right now. It returns
// false without recording when the window is full.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	if len(r.requests) >= r.config.MaxRequests {
		return false
	}
	r.requests = append(r.requests, now)
	return true
}

// WaitTime returns how long until the next request would be allowed.
// Zero means a request is allowed immediately.
func (r *RateLimiter) WaitTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	if len(r.requests) < r.config.MaxRequests {
		return 0
	}
	return r.requests[0].Add(r.config.Window).Sub(now)
}

// Wait blocks until a request slot opens, then records the request.
// It returns early if the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}

		wait := r.WaitTime()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops request timestamps older than the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.config.Window)
	i := 0
	for i < len(r.requests) && !r.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.requests = append(r.requests[:0], r.requests[i:]...)
	}
}
