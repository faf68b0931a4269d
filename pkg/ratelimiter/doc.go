// Package ratelimiter implements token bucket rate limiting.
//
// A Limiter applies one Config to any number of keys. Each key gets a bucket
// holding up to Capacity tokens that gains RefillRate tokens every
// RefillInterval. A request takes tokens only when enough are available, so
// a denied caller is not penalized further.
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{
//		Capacity:       3,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, phone)
//	if err != nil {
//		return err
//	}
//	if !res.Allowed {
//		return fmt.Errorf("try again in %s", res.RetryAfter)
//	}
//
// MemoryStore is the default Store. It reads time from a clockwork.Clock so
// tests can drive refills with a fake clock, and drops buckets that have not
// been used for an hour.
package ratelimiter
