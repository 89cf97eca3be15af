package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverRateLimiter uses the primary limiter until it fails, then serves from
// the fallback and retries the primary once per recovery interval.
type FailoverRateLimiter struct {
	primary   domain.RateLimiter
	fallback  domain.RateLimiter
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverRateLimiter(primary, fallback domain.RateLimiter, logger *zerolog.Logger) *FailoverRateLimiter {
	return &FailoverRateLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverRateLimiter) CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	if r.isDown.Load() {
		// Try to recover after the interval
		if r.now().Sub(time.Unix(0, r.lastCheck.Load())) <= recoveryInterval {
			return r.fallback.CheckRateLimit(ctx, actorID, limit, window)
		}
	}

	allowed, err := r.primary.CheckRateLimit(ctx, actorID, limit, window)
	if err == nil {
		if r.isDown.CompareAndSwap(true, false) {
			metrics.SetLimiterDegraded(false)
			r.logger.Info().Msg("Primary rate limiter recovered")
		}
		return allowed, nil
	}

	if !r.isDown.Swap(true) {
		metrics.SetLimiterDegraded(true)
		r.logger.Error().Err(err).Msg("Primary rate limiter failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())

	return r.fallback.CheckRateLimit(ctx, actorID, limit, window)
}

func (r *FailoverRateLimiter) Degraded() bool {
	return r.isDown.Load()
}
