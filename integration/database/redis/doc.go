// Package redis connects to Redis and stores the client session there.
//
// Connect creates a go-redis client and verifies it with PING, retrying with
// exponential backoff until cfg.ConnectTimeout elapses. Healthcheck returns a
// probe suitable for readiness checks.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		SessionKey     string        `env:"REDIS_SESSION_KEY" envDefault:"nearby:session"`
//		SessionTTL     time.Duration `env:"REDIS_SESSION_TTL" envDefault:"0s"`
//	}
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Session persistence
//
// SessionPersister implements session.Persister. The session is encoded with
// session.Marshal and written to a single key, so several processes sharing
// the key share one signed-in user:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	p, err := redis.NewSessionPersister(client, cfg.SessionKey, cfg.SessionTTL)
//	if err != nil {
//		return err
//	}
//	store := session.NewStore(session.WithPersister(p))
//	if err := store.Restore(ctx); err != nil {
//		return err
//	}
//
// # Errors
//
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: PING did not succeed within the retry budget
//   - ErrHealthcheckFailed: the probe failed
//   - ErrCorruptSession: the stored value is not a valid session document
package redis
