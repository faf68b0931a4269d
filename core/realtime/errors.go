package realtime

import "errors"

var (
	ErrNotConfigured    = errors.New("realtime: socket URL is not configured")
	ErrNotConnected     = errors.New("realtime: not connected")
	ErrNotAuthenticated = errors.New("realtime: no credential to connect with")
	ErrEmptyEvent       = errors.New("realtime: event name is required")
)
