// Package ratelimit throttles callers per key. Redis holds shared fixed-window
// counters; in-process token buckets take over while Redis is unreachable.
package ratelimit

import (
	"context"
	"math"
	"time"

	"shareit/internal/config"
)

// Limiter decides whether one more request for key fits its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// WindowLimit is the number of requests a fixed window admits.
func WindowLimit(cfg config.RateLimitConfig) int {
	window := cfg.Window
	if window <= 0 {
		window = time.Second
	}
	limit := int(math.Ceil(cfg.RPS * window.Seconds()))
	if cfg.Burst > limit {
		limit = cfg.Burst
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// Noop admits everything. Used when limiting is disabled.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }
