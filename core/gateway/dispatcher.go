package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/session"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// CredentialReader provides the current credential.
// *session.Store satisfies it.
type CredentialReader interface {
	Credential() session.Credential
}

// Dispatcher performs a single HTTP call and classifies its outcome.
// It never retries and never writes the session.
type Dispatcher struct {
	cfg     Config
	baseURL *url.URL
	creds   CredentialReader
	opts    *options
}

// NewDispatcher creates a Dispatcher for cfg.BaseURL.
func NewDispatcher(cfg Config, creds CredentialReader, opts ...Option) (*Dispatcher, error) {
	if creds == nil {
		return nil, ErrNilStore
	}
	base, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	return &Dispatcher{cfg: cfg, baseURL: base, creds: creds, opts: buildOptions(opts)}, nil
}

// Send dispatches env. It returns a normalized Response for 2xx, an *Error
// of KindUnauthorized for 401 and an *Error of KindTransport otherwise.
func (d *Dispatcher) Send(ctx context.Context, env Envelope) (*Response, error) {
	requestID := env.RequestID
	if requestID == "" {
		if id, ok := RequestIDFromContext(ctx); ok {
			requestID = id
		} else {
			requestID = d.opts.idGenerator()
		}
	}
	ctx = WithRequestID(ctx, requestID)

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	// Read at call time, not when the envelope was built, so replays pick
	// up a refreshed credential.
	cred := d.creds.Credential()

	req, err := d.newRequest(ctx, env, cred, requestID)
	if err != nil {
		return nil, transportError(0, err.Error(), err)
	}

	start := time.Now()
	resp, err := d.opts.httpClient.Do(req)
	if err != nil {
		d.observe(ctx, env, OutcomeTransport, 0, start, err)
		return nil, transportError(0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		d.observe(ctx, env, OutcomeTransport, resp.StatusCode, start, err)
		return nil, transportError(resp.StatusCode, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		d.observe(ctx, env, OutcomeSuccess, resp.StatusCode, start, nil)
		out := normalize(resp.StatusCode, resp.Header, body)
		out.RequestID = requestID
		return out, nil

	case resp.StatusCode == http.StatusUnauthorized:
		d.observe(ctx, env, OutcomeUnauthorized, resp.StatusCode, start, nil)
		return nil, &Error{
			Kind:       KindUnauthorized,
			Status:     resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			credential: cred,
		}

	default:
		d.observe(ctx, env, OutcomeTransport, resp.StatusCode, start, nil)
		return nil, transportError(resp.StatusCode, errorMessage(resp.StatusCode, body), nil)
	}
}

func (d *Dispatcher) newRequest(ctx context.Context, env Envelope, cred session.Credential, requestID string) (*http.Request, error) {
	u := d.resolve(env)

	var body io.Reader
	if env.Body != nil {
		body = bytes.NewReader(env.Body)
	}

	req, err := http.NewRequestWithContext(ctx, env.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", env.Method, env.Path, err)
	}

	for k, vs := range env.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set(d.cfg.RequestIDHeader, requestID)
	if env.ContentType != "" {
		req.Header.Set("Content-Type", env.ContentType)
	}
	if !cred.IsZero() {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	return req, nil
}

// resolve joins the envelope path onto the base URL and merges the query.
func (d *Dispatcher) resolve(env Envelope) *url.URL {
	u := d.baseURL.JoinPath(env.Path)

	if len(env.Query) > 0 {
		q := u.Query()
		for k, vs := range env.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u
}

func (d *Dispatcher) observe(ctx context.Context, env Envelope, outcome string, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	d.opts.metrics.ObserveRequest(env.Method, outcome, elapsed)

	level := slog.LevelDebug
	if outcome == OutcomeTransport {
		level = slog.LevelWarn
	}
	id, _ := RequestIDFromContext(ctx)
	d.opts.logger.LogAttrs(ctx, level, "api request completed",
		logger.Component("gateway"),
		logger.Method(env.Method),
		logger.Path(env.Path),
		logger.StatusCode(status),
		logger.RequestID(id),
		logger.Result(outcome),
		logger.Latency(elapsed),
		slog.Bool("retry", env.RetryAttempted),
		logger.Error(err),
	)
}
