package api

import (
	"sync"

	"shareit/internal/config"

	"golang.org/x/time/rate"
)

// keyLimiter keeps one token bucket per API client key.
type keyLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func newKeyLimiter(cfg config.APIRateLimitConfig) *keyLimiter {
	return &keyLimiter{
		cfg: cfg,
	}
}

func (l *keyLimiter) enabled() bool {
	return l.cfg.RPS > 0
}

func (l *keyLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
