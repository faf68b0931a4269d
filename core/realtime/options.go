package realtime

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/nearby/core/logger"
)

type options struct {
	logger *slog.Logger
	dialer *websocket.Dialer
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDialer replaces the websocket dialer. HandshakeTimeout from Config is
// applied on top of it.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger: logger.Discard(),
		dialer: &websocket.Dialer{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
