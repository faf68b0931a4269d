package gateway

import (
	"context"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// WithRequestID returns a context carrying a request ID that the dispatcher
// sends instead of generating one. Useful to correlate an outbound call with
// the inbound request that caused it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the request ID stored by WithRequestID or by
// the dispatcher for the call in flight.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok && id != ""
}

func newRequestID() string {
	return uuid.New().String()
}
