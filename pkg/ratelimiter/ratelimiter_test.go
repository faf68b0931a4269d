package ratelimiter_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/pkg/ratelimiter"
)

var cfg = ratelimiter.Config{
	Capacity:       3,
	RefillRate:     1,
	RefillInterval: time.Minute,
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, cfg.Validate())
	for _, c := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		assert.ErrorIs(t, c.Validate(), ratelimiter.ErrInvalidConfig)
	}

	_, err := ratelimiter.New(ratelimiter.Config{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestMemoryStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("new bucket starts full", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore()

		remaining, resetAt, err := store.ConsumeTokens(ctx, "k", 2, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)
		assert.False(t, resetAt.IsZero())
	})

	t.Run("denied request takes nothing", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore()

		remaining, _, err := store.ConsumeTokens(ctx, "k", 2, cfg)
		require.NoError(t, err)
		require.Equal(t, 1, remaining)

		remaining, _, err = store.ConsumeTokens(ctx, "k", 3, cfg)
		require.NoError(t, err)
		assert.Equal(t, -2, remaining)

		remaining, _, err = store.ConsumeTokens(ctx, "k", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})

	t.Run("refills and caps at capacity", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clock))

		remaining, _, err := store.ConsumeTokens(ctx, "k", 3, cfg)
		require.NoError(t, err)
		require.Equal(t, 0, remaining)

		clock.Advance(time.Minute)
		remaining, _, err = store.ConsumeTokens(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)

		clock.Advance(90 * time.Second)
		remaining, resetAt, err := store.ConsumeTokens(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)
		assert.Equal(t, clock.Now().Add(30*time.Second), resetAt, "partial interval is not lost")

		clock.Advance(24 * time.Hour)
		remaining, _, err = store.ConsumeTokens(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore()

		_, _, err := store.ConsumeTokens(ctx, "a", 3, cfg)
		require.NoError(t, err)
		remaining, _, err := store.ConsumeTokens(ctx, "b", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)

		require.NoError(t, store.Reset(ctx, "a"))
		remaining, _, err = store.ConsumeTokens(ctx, "a", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore()

		_, _, err := store.ConsumeTokens(ctx, "k", -1, cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
		_, _, err = store.ConsumeTokens(ctx, "k", 1, ratelimiter.Config{})
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	})
}

func TestMemoryStore_DropsStaleBuckets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clock), ratelimiter.WithStaleAfter(time.Hour))

	for i := range 5 {
		_, _, err := store.ConsumeTokens(ctx, fmt.Sprintf("k-%d", i), 1, cfg)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, store.Stats().ActiveBuckets)

	clock.Advance(2 * time.Hour)
	_, _, err := store.ConsumeTokens(ctx, "fresh", 1, cfg)
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 1, stats.ActiveBuckets)
	assert.Equal(t, int64(6), stats.BucketsCreated)
	assert.Equal(t, int64(5), stats.BucketsRemoved)
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter, err := ratelimiter.New(cfg, ratelimiter.WithLimiterClock(clock))
	require.NoError(t, err)

	for want := 2; want >= 0; want-- {
		res, err := limiter.Allow(ctx, "+15550100")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "+15550100")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)

	clock.Advance(20 * time.Second)
	res, err = limiter.AllowN(ctx, "+15550100", 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 100*time.Second, res.RetryAfter, "two tokens need the next refill plus one more interval")

	clock.Advance(40 * time.Second)
	res, err = limiter.Allow(ctx, "+15550100")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	require.NoError(t, limiter.Reset(ctx, "+15550100"))
	res, err = limiter.Allow(ctx, "+15550100")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)

	_, err = limiter.AllowN(ctx, "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	_, err = limiter.AllowN(ctx, "k", cfg.Capacity+1)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	limiter, err := ratelimiter.New(ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "shared")
			assert.NoError(t, err)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
