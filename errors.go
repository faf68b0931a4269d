package nearby

import "errors"

// ErrUnknownBackend is returned by Open for an unsupported session backend.
var ErrUnknownBackend = errors.New("nearby: unknown session backend")
