package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/nearby/core/logger"
)

// Store owns the single process-wide Session.
// Readers take a snapshot; writers go through the explicit setters below.
// The credential is written only by login/signup (Authenticate), the refresh
// coordinator (SetCredential, ClearCredential) and logout (Clear).
//
// writeMu serializes writers and their persistence calls; mu only guards
// the in-memory session, so reads never wait on the persister.
type Store struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	sess      Session
	persister Persister
	logger    *slog.Logger

	subMu  sync.Mutex
	subs   map[int]func(Session)
	nextID int
}

// NewStore creates a store holding the empty session.
// Call Restore to rehydrate persisted state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		persister: nopPersister{},
		logger:    logger.Discard(),
		subs:      make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credential returns the current credential, read at call time.
func (s *Store) Credential() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Credential
}

// RefreshToken returns the refresh token issued with the current credential.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.RefreshToken
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.IsAuthenticated
}

// User returns a copy of the signed-in user.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.User == nil {
		return User{}, false
	}
	return s.sess.User.clone(), true
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.clone()
}

// Restore rehydrates the session from the persister.
// A missing persisted session leaves the store empty and is not an error.
func (s *Store) Restore(ctx context.Context) error {
	sess, err := s.persister.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrRestore, err)
	}

	// A persisted session without a credential cannot be authenticated.
	if sess.Credential.IsZero() {
		sess.IsAuthenticated = false
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.sess = sess.clone()
	snap := s.sess.clone()
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.DebugContext(ctx, "session restored",
		logger.Component("session"),
		slog.Bool("authenticated", snap.IsAuthenticated),
	)
	s.notify(snap)
	return nil
}

// Authenticate populates the session after a successful login or signup.
func (s *Store) Authenticate(ctx context.Context, cred Credential, refreshToken string, user User) error {
	if cred.IsZero() {
		return ErrEmptyCredential
	}
	u := user.clone()
	return s.update(ctx, func(sess *Session) error {
		*sess = Session{
			IsAuthenticated: true,
			Credential:      cred,
			RefreshToken:    refreshToken,
			User:            &u,
		}
		return nil
	})
}

// SetCredential replaces the credential after a successful refresh of
// expected. An empty refreshToken keeps the current one.
// Fails with ErrNotAuthenticated when the session was cleared, and with
// ErrSessionChanged when another login replaced expected in the meantime, so
// a late refresh never lands in a session it was not issued for.
func (s *Store) SetCredential(ctx context.Context, expected, cred Credential, refreshToken string) error {
	if cred.IsZero() {
		return ErrEmptyCredential
	}
	return s.update(ctx, func(sess *Session) error {
		if !sess.IsAuthenticated {
			return ErrNotAuthenticated
		}
		if sess.Credential != expected {
			return ErrSessionChanged
		}
		sess.Credential = cred
		if refreshToken != "" {
			sess.RefreshToken = refreshToken
		}
		return nil
	})
}

// SetUser replaces the signed-in user.
func (s *Store) SetUser(ctx context.Context, user User) error {
	u := user.clone()
	return s.update(ctx, func(sess *Session) error {
		if !sess.IsAuthenticated {
			return ErrNotAuthenticated
		}
		sess.User = &u
		return nil
	})
}

// UpdateUser applies fn to the signed-in user.
func (s *Store) UpdateUser(ctx context.Context, fn func(*User)) error {
	return s.update(ctx, func(sess *Session) error {
		if !sess.IsAuthenticated || sess.User == nil {
			return ErrNotAuthenticated
		}
		fn(sess.User)
		return nil
	})
}

// Clear resets the session to its empty state. In-memory state is always
// reset; a persister failure is returned after the fact. Safe to call
// repeatedly.
func (s *Store) Clear(ctx context.Context) error {
	return s.clear(ctx, func(Session) error { return nil })
}

// ClearCredential resets the session only while cred is still its
// credential. It returns ErrSessionChanged, leaving the session untouched,
// when a newer login replaced cred.
func (s *Store) ClearCredential(ctx context.Context, cred Credential) error {
	return s.clear(ctx, func(sess Session) error {
		if sess.Credential != cred {
			return ErrSessionChanged
		}
		return nil
	})
}

func (s *Store) clear(ctx context.Context, check func(Session) error) error {
	s.writeMu.Lock()

	s.mu.Lock()
	if err := check(s.sess); err != nil {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return err
	}
	wasEmpty := s.sess.IsZero()
	s.sess = Session{}
	s.mu.Unlock()

	err := s.persister.Delete(ctx)
	s.writeMu.Unlock()

	if !wasEmpty {
		s.logger.InfoContext(ctx, "session cleared", logger.Component("session"))
		s.notify(Session{})
	}
	if err != nil {
		return errors.Join(ErrPersist, err)
	}
	return nil
}

// Subscribe registers fn to receive a snapshot after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// update mutates a copy of the session, commits it and persists it.
// Writes are serialized by writeMu so the persister observes them in order.
func (s *Store) update(ctx context.Context, fn func(*Session) error) error {
	s.writeMu.Lock()

	s.mu.RLock()
	next := s.sess.clone()
	s.mu.RUnlock()

	if err := fn(&next); err != nil {
		s.writeMu.Unlock()
		return err
	}

	s.mu.Lock()
	s.sess = next
	s.mu.Unlock()

	perr := s.persister.Save(ctx, next)
	s.writeMu.Unlock()
	snap := next.clone()

	if perr != nil {
		s.logger.WarnContext(ctx, "session persistence failed",
			logger.Component("session"),
			logger.Error(perr),
		)
	}
	s.notify(snap)

	if perr != nil {
		return errors.Join(ErrPersist, perr)
	}
	return nil
}

func (s *Store) notify(snap Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}
