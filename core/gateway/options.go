package gateway

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/nearby/core/logger"
)

type options struct {
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     Metrics
	idGenerator func() string
}

func defaultOptions() *options {
	return &options{
		httpClient:  &http.Client{},
		logger:      logger.Discard(),
		metrics:     nopMetrics{},
		idGenerator: newRequestID,
	}
}

// Option configures the Client, Dispatcher and Coordinator.
type Option func(*options)

// WithHTTPClient sets the underlying HTTP client. Its Timeout is ignored in
// favor of Config.Timeout, which bounds every call through the context.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithRequestIDGenerator replaces the UUID v4 generator for X-Request-ID.
func WithRequestIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.idGenerator = fn
		}
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
