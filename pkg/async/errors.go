package async

import "errors"

// ErrTimeout is returned by AwaitWithTimeout when the deadline passes first.
var ErrTimeout = errors.New("async: timeout waiting for result")
