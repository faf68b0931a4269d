package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/nearby/core/logger"
)

// Client is the authenticated API client used by the rest of the SDK.
//
// Every call goes through the Dispatcher. A 401 triggers one credential
// refresh through the Coordinator (shared by every request that fails while
// it is in flight) followed by exactly one replay of the request. A replay
// that is rejected again, or a refresh that fails, surfaces as
// KindSessionExpired. Transport errors pass through untouched.
type Client struct {
	dispatcher  *Dispatcher
	coordinator *Coordinator
	opts        *options
}

// New creates a Client reading and refreshing credentials through store.
func New(cfg Config, store SessionWriter, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	dispatcher, err := NewDispatcher(cfg, store, opts...)
	if err != nil {
		return nil, err
	}
	coordinator, err := NewCoordinator(cfg, store, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		dispatcher:  dispatcher,
		coordinator: coordinator,
		opts:        buildOptions(opts),
	}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with a JSON body (nil for none).
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do builds an envelope and sends it.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	env, err := NewEnvelope(method, path, body, opts...)
	if err != nil {
		return nil, transportError(0, "invalid request body", err)
	}
	return c.Send(ctx, env)
}

// Send dispatches env and applies the refresh-and-retry-once protocol.
func (c *Client) Send(ctx context.Context, env Envelope) (*Response, error) {
	resp, err := c.dispatcher.Send(ctx, env)
	if err == nil {
		return resp, nil
	}

	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindUnauthorized {
		return nil, err
	}

	if env.RetryAttempted {
		return nil, c.expired(ctx, env, gerr)
	}

	if _, err := c.coordinator.Refresh(ctx, gerr.credential); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, transportError(0, "canceled while waiting for credential refresh", ctxErr)
		}
		return nil, c.expired(ctx, env, err)
	}

	resp, err = c.dispatcher.Send(ctx, env.Retried())
	if err == nil {
		return resp, nil
	}
	if errors.As(err, &gerr) && gerr.Kind == KindUnauthorized {
		return nil, c.expired(ctx, env, gerr)
	}
	return nil, err
}

// IsRefreshing reports whether a credential refresh is in flight.
func (c *Client) IsRefreshing() bool {
	return c.coordinator.IsRefreshing()
}

func (c *Client) expired(ctx context.Context, env Envelope, cause error) error {
	c.opts.logger.WarnContext(ctx, "session expired",
		logger.Component("gateway"),
		logger.Method(env.Method),
		logger.Path(env.Path),
		logger.Error(cause),
	)
	return sessionExpired(cause)
}
