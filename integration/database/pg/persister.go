package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/nearby/core/session"
)

// DefaultSessionKey is used when no key is configured.
const DefaultSessionKey = "default"

// SessionPersister keeps the client session in the client_sessions table,
// one row per key. It implements session.Persister. Run Migrate first.
type SessionPersister struct {
	pool *pgxpool.Pool
	key  string
}

// NewSessionPersister creates a persister for the row identified by key.
func NewSessionPersister(pool *pgxpool.Pool, key string) (*SessionPersister, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionPersister{pool: pool, key: key}, nil
}

func (p *SessionPersister) Load(ctx context.Context) (session.Session, error) {
	const q = `SELECT data FROM client_sessions WHERE session_key = $1`

	var data []byte
	err := conn(ctx, p.pool).QueryRow(ctx, q, p.key).Scan(&data)
	if IsNotFoundError(err) {
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
	const q = `INSERT INTO client_sessions (session_key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	data, err := session.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = conn(ctx, p.pool).Exec(ctx, q, p.key, data)
	return err
}

func (p *SessionPersister) Delete(ctx context.Context) error {
	const q = `DELETE FROM client_sessions WHERE session_key = $1`

	_, err := conn(ctx, p.pool).Exec(ctx, q, p.key)
	return err
}
