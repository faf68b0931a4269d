package nearby

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/nearby/core/session"
)

type options struct {
	logger     *slog.Logger
	persister  session.Persister
	httpClient *http.Client
	dialer     *websocket.Dialer
	registerer prometheus.Registerer
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPersister stores the session with p. It overrides the configured
// session backend.
func WithPersister(p session.Persister) Option {
	return func(o *options) {
		o.persister = p
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithDialer sets the websocket dialer used by the realtime socket.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithMetrics registers gateway metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
