package session

import (
	"context"
	"encoding/json"
	"sync"
)

// Persister stores the session across process restarts.
// Only the "auth" and "user" fields are persisted.
// Implementations must be safe for concurrent use.
type Persister interface {
	// Load returns ErrNotFound when nothing has been saved.
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, sess Session) error
	// Delete must succeed when nothing is stored.
	Delete(ctx context.Context) error
}

// authState is the persisted "auth" field.
type authState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"token,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
}

type document struct {
	Auth authState `json:"auth"`
	User *User     `json:"user"`
}

// Marshal encodes the persisted fields of a session.
func Marshal(sess Session) ([]byte, error) {
	return json.Marshal(document{
		Auth: authState{
			IsAuthenticated: sess.IsAuthenticated,
			Token:           string(sess.Credential),
			RefreshToken:    sess.RefreshToken,
		},
		User: sess.User,
	})
}

// Unmarshal decodes a document produced by Marshal.
func Unmarshal(data []byte) (Session, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Session{}, err
	}
	return Session{
		IsAuthenticated: doc.Auth.IsAuthenticated,
		Credential:      Credential(doc.Auth.Token),
		RefreshToken:    doc.Auth.RefreshToken,
		User:            doc.User,
	}, nil
}

// MemoryPersister keeps the encoded session in memory.
// Useful for tests and short-lived processes.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(_ context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data == nil {
		return Session{}, ErrNotFound
	}
	return Unmarshal(p.data)
}

func (p *MemoryPersister) Save(_ context.Context, sess Session) error {
	data, err := Marshal(sess)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	return nil
}

// nopPersister is used when no persister is configured.
type nopPersister struct{}

func (nopPersister) Load(context.Context) (Session, error) { return Session{}, ErrNotFound }
func (nopPersister) Save(context.Context, Session) error   { return nil }
func (nopPersister) Delete(context.Context) error          { return nil }
