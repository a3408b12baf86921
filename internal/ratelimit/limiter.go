package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Store counts attempts per key within a fixed window. Incr returns the
// number of attempts recorded in the current window, including this one.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter applies a max-attempts-per-window policy over a Store
type Limiter struct {
	max    int64
	window time.Duration
	store  Store
	logger *zap.Logger
}

// NewLimiter creates a quota limiter
func NewLimiter(max int, window time.Duration, store Store, logger *zap.Logger) *Limiter {
	return &Limiter{
		max:    int64(max),
		window: window,
		store:  store,
		logger: logger,
	}
}

// Allow records an attempt for key and reports whether it is within quota.
// A store failure never blocks the request; it is logged and allowed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("key", key),
			zap.Error(err))
		return true
	}
	return count <= l.max
}
