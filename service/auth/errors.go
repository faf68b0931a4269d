package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNilClient           = errors.New("auth: api client is required")
	ErrNilStore            = errors.New("auth: session store is required")
	ErrVerificationNotSent = errors.New("auth: verification code was not sent")
	ErrMissingToken        = errors.New("auth: response has no token")
	ErrMissingUser         = errors.New("auth: response has no user")
	ErrTooManyCodeRequests = errors.New("auth: too many verification code requests")
)

// ThrottledError is returned when verification codes for a number were
// requested too often.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v: retry in %s", ErrTooManyCodeRequests, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error {
	return ErrTooManyCodeRequests
}
