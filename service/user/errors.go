package user

import "errors"

var (
	ErrNilClient        = errors.New("user: api client is required")
	ErrNilStore         = errors.New("user: session store is required")
	ErrNotAuthenticated = errors.New("user: not signed in")
	ErrEmptyImage       = errors.New("user: image is empty")
	ErrImageTooLarge    = errors.New("user: image exceeds size limit")
)
