package session

import "errors"

var (
	// ErrNotFound is returned by a Persister when nothing has been stored yet.
	ErrNotFound = errors.New("persisted session not found")
	// ErrNotAuthenticated is returned when an operation requires a signed-in session.
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrSessionChanged is returned by conditional writes when the credential
	// they were issued for has been replaced.
	ErrSessionChanged = errors.New("session changed since the credential was issued")
	// ErrEmptyCredential is returned when an empty credential is written.
	ErrEmptyCredential = errors.New("credential is empty")
	// ErrPersist wraps failures of the configured Persister.
	ErrPersist = errors.New("failed to persist session")
	// ErrRestore wraps failures while rehydrating persisted state.
	ErrRestore = errors.New("failed to restore session")
)
