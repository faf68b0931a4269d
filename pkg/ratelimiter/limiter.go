package ratelimiter

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Result describes the outcome of Allow.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter is how long until a denied request would be allowed.
	RetryAfter time.Duration
}

// Limiter applies one Config to many keys.
type Limiter struct {
	store  Store
	config Config
	clock  clockwork.Clock
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithStore replaces the default MemoryStore.
func WithStore(s Store) LimiterOption {
	return func(l *Limiter) {
		if s != nil {
			l.store = s
		}
	}
}

// WithLimiterClock sets the time source used for RetryAfter and for the
// default store.
func WithLimiterClock(c clockwork.Clock) LimiterOption {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// New creates a Limiter.
func New(config Config, opts ...LimiterOption) (*Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{config: config, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(l)
	}
	if l.store == nil {
		l.store = NewMemoryStore(WithClock(l.clock))
	}
	return l, nil
}

// Allow takes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key. A denied request takes nothing.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 || n > l.config.Capacity {
		return Result{}, ErrInvalidTokenCount
	}

	remaining, resetAt, err := l.store.ConsumeTokens(ctx, key, n, l.config)
	if err != nil {
		return Result{}, err
	}

	res := Result{Allowed: remaining >= 0, Remaining: max(remaining, 0), ResetAt: resetAt}
	if !res.Allowed {
		deficit := -remaining
		intervals := (deficit + l.config.RefillRate - 1) / l.config.RefillRate
		res.RetryAfter = max(resetAt.Sub(l.clock.Now()), 0) + time.Duration(intervals-1)*l.config.RefillInterval
	}
	return res, nil
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
