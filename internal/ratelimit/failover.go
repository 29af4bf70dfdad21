package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const defaultRecheck = time.Minute

// FailoverLimiter asks primary first and switches to fallback when primary
// errors. Primary is retried once recheck has elapsed.
type FailoverLimiter struct {
	primary   Limiter
	fallback  Limiter
	logger    *zerolog.Logger
	recheck   time.Duration
	now       func() time.Time
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverLimiter(primary, fallback Limiter, logger *zerolog.Logger) *FailoverLimiter {
	return &FailoverLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		recheck:  defaultRecheck,
		now:      time.Now,
	}
}

func (l *FailoverLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.primary != nil && l.usePrimary() {
		allowed, err := l.primary.Allow(ctx, key)
		if err == nil {
			if l.isDown.Swap(false) {
				l.logger.Info().Msg("Primary rate limiter recovered")
			}
			if !allowed {
				metrics.IncRateLimited("redis")
			}
			return allowed, nil
		}
		if !l.isDown.Swap(true) {
			l.logger.Error().Err(err).Msg("Primary rate limiter failed, falling back to memory")
		}
		l.lastCheck.Store(l.now().UnixNano())
	}

	allowed, err := l.fallback.Allow(ctx, key)
	if err == nil && !allowed {
		metrics.IncRateLimited("memory")
	}
	return allowed, err
}

func (l *FailoverLimiter) usePrimary() bool {
	if !l.isDown.Load() {
		return true
	}
	return l.now().Sub(time.Unix(0, l.lastCheck.Load())) > l.recheck
}
