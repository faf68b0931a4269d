package location

import "errors"

var (
	ErrNilClient        = errors.New("location: api client is required")
	ErrNilSource        = errors.New("location: position source is required")
	ErrNilUpdater       = errors.New("location: updater is required")
	ErrRealtimeDisabled = errors.New("location: realtime is not configured")
	ErrInvalidConfig    = errors.New("location: invalid tracker config")
)
