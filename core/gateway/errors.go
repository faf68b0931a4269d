package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/nearby/core/session"
)

// Kind classifies gateway failures.
type Kind int

const (
	// KindTransport covers network failures and every non-2xx response other
	// than 401. The server's status and message are preserved.
	KindTransport Kind = iota
	// KindUnauthorized means the credential was rejected. It is internal to
	// the Client and is always turned into a retry or KindSessionExpired.
	KindUnauthorized
	// KindSessionExpired tells the application to force a fresh login.
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindSessionExpired:
		return "session_expired"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel errors for errors.Is checks against *Error values.
var (
	ErrTransport      = errors.New("gateway: transport error")
	ErrUnauthorized   = errors.New("gateway: unauthorized")
	ErrSessionExpired = errors.New("gateway: session expired")

	ErrMissingBaseURL = errors.New("gateway: base URL is required")
	ErrInvalidBaseURL = errors.New("gateway: invalid base URL")
	ErrNilStore       = errors.New("gateway: session store is required")
	ErrNoCredential   = errors.New("gateway: no credential to refresh")
	ErrEmptyToken     = errors.New("gateway: refresh response has no token")
)

// Error is returned by the Dispatcher and the Client.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status; 0 when no response was received
	Message string // server-provided message when available
	Err     error

	// credential is the credential that was rejected (KindUnauthorized only).
	credential session.Credential
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("gateway: %s (status %d): %s", e.Kind, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("gateway: %s (status %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("gateway: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("gateway: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrSessionExpired:
		return e.Kind == KindSessionExpired
	}
	return false
}

// RefreshError reports a failed credential refresh. A refresh failure always
// ends the session.
type RefreshError struct {
	Status int
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Revoked() {
		return fmt.Sprintf("credential revoked: %v", e.Err)
	}
	return fmt.Sprintf("credential refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Revoked reports whether the authorization server rejected the refresh
// outright rather than failing transiently.
func (e *RefreshError) Revoked() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized
}

func transportError(status int, message string, err error) *Error {
	return &Error{Kind: KindTransport, Status: status, Message: message, Err: err}
}

func sessionExpired(cause error) *Error {
	e := &Error{Kind: KindSessionExpired, Err: cause}
	var gerr *Error
	if errors.As(cause, &gerr) {
		e.Status = gerr.Status
		e.Message = gerr.Message
	}
	var rerr *RefreshError
	if errors.As(cause, &rerr) {
		e.Status = rerr.Status
	}
	return e
}
