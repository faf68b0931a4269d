package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/nearby/core/session"
)

// DefaultSessionKey is used when no key is configured.
const DefaultSessionKey = "nearby:session"

// SessionPersister keeps the client session under a single Redis key.
// It implements session.Persister.
type SessionPersister struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

// NewSessionPersister creates a persister storing the session at key.
// An empty key uses DefaultSessionKey; ttl <= 0 disables expiry.
func NewSessionPersister(rdb redis.Cmdable, key string, ttl time.Duration) (*SessionPersister, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionPersister{rdb: rdb, key: key, ttl: max(ttl, 0)}, nil
}

func (p *SessionPersister) Load(ctx context.Context) (session.Session, error) {
	data, err := p.rdb.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, err
	}

	sess, err := session.Unmarshal(data)
	if err != nil {
		return session.Session{}, errors.Join(ErrCorruptSession, err)
	}
	return sess, nil
}

func (p *SessionPersister) Save(ctx context.Context, sess session.Session) error {
	data, err := session.Marshal(sess)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, p.key, data, p.ttl).Err()
}

func (p *SessionPersister) Delete(ctx context.Context) error {
	return p.rdb.Del(ctx, p.key).Err()
}
