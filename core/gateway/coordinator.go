package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/session"
	"github.com/dmitrymomot/nearby/pkg/async"
)

// SessionWriter is the part of the session store the coordinator needs.
// *session.Store satisfies it.
type SessionWriter interface {
	CredentialReader
	RefreshToken() string
	SetCredential(ctx context.Context, expected, cred session.Credential, refreshToken string) error
	ClearCredential(ctx context.Context, cred session.Credential) error
}

// PendingRequest is a caller suspended until the in-flight refresh settles.
// It is completed exactly once.
type PendingRequest struct {
	result chan refreshResult
}

type refreshResult struct {
	cred session.Credential
	err  error
}

func newPendingRequest() *PendingRequest {
	return &PendingRequest{result: make(chan refreshResult, 1)}
}

func (p *PendingRequest) resolve(cred session.Credential, err error) {
	p.result <- refreshResult{cred: cred, err: err}
}

// wait blocks until the refresh settles or ctx is done. A caller that stops
// waiting does not affect the refresh or the other waiters.
func (p *PendingRequest) wait(ctx context.Context) (session.Credential, error) {
	select {
	case r := <-p.result:
		return r.cred, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Coordinator exchanges a rejected credential for a new one, making sure
// only one refresh call is in flight at a time. The state is Idle when
// inflight is nil and Refreshing otherwise; both inflight and queue are
// guarded by mu, which makes "start a refresh or join the queue" atomic.
type Coordinator struct {
	cfg      Config
	endpoint string
	store    SessionWriter
	opts     *options

	mu       sync.Mutex
	inflight *async.Future[session.Credential]
	queue    []*PendingRequest
}

// NewCoordinator creates a Coordinator that refreshes against
// cfg.BaseURL + cfg.RefreshPath.
func NewCoordinator(cfg Config, store SessionWriter, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	base, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		cfg:      cfg,
		endpoint: base.JoinPath(cfg.RefreshPath).String(),
		store:    store,
		opts:     buildOptions(opts),
	}, nil
}

// IsRefreshing reports whether a refresh is in flight.
func (c *Coordinator) IsRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

// Pending returns the number of callers waiting on the in-flight refresh.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Refresh returns a credential to retry with after rejected was refused.
//
// If a refresh is in flight the caller is queued and receives its outcome.
// If the stored credential already differs from rejected, a refresh finished
// after the caller's request left, and the current credential is returned
// without another call. Otherwise the caller starts the refresh.
//
// The refresh itself runs detached from ctx: when the caller that started it
// gives up, the queued callers still get the outcome. Failures are returned
// as *RefreshError and clear the session, unless a newer login replaced the
// refreshed credential while the call was in flight; that session is left
// untouched and the callers get a *RefreshError wrapping
// session.ErrSessionChanged.
func (c *Coordinator) Refresh(ctx context.Context, rejected session.Credential) (session.Credential, error) {
	c.mu.Lock()

	if c.inflight != nil {
		p := newPendingRequest()
		c.queue = append(c.queue, p)
		c.opts.metrics.SetPending(len(c.queue))
		c.mu.Unlock()

		return p.wait(ctx)
	}

	current := c.store.Credential()
	if !current.IsZero() && current != rejected {
		c.mu.Unlock()
		return current, nil
	}

	f := async.Async(context.WithoutCancel(ctx), current, c.run)
	c.inflight = f
	c.mu.Unlock()

	return f.AwaitContext(ctx)
}

// run performs the refresh, writes the outcome to the session, returns the
// coordinator to Idle and releases the queue in FIFO order.
func (c *Coordinator) run(ctx context.Context, current session.Credential) (session.Credential, error) {
	start := time.Now()
	log := c.opts.logger.With(logger.Component("gateway"), logger.Event("credential_refresh"))

	var (
		cred         session.Credential
		refreshToken string
		err          error
	)
	if current.IsZero() {
		err = &RefreshError{Err: ErrNoCredential}
	} else {
		log.InfoContext(ctx, "refreshing credential")
		cred, refreshToken, err = c.exchange(ctx, current)
	}

	if err == nil {
		if serr := c.store.SetCredential(ctx, current, cred, refreshToken); serr != nil {
			if errors.Is(serr, session.ErrPersist) {
				log.WarnContext(ctx, "refreshed credential not persisted", logger.Error(serr))
			} else {
				err = &RefreshError{Err: serr}
			}
		}
	}

	if err != nil {
		switch cerr := c.store.ClearCredential(ctx, current); {
		case errors.Is(cerr, session.ErrSessionChanged):
			log.InfoContext(ctx, "session replaced during refresh, left untouched")
		case cerr != nil:
			log.WarnContext(ctx, "failed to persist session clear", logger.Error(cerr))
		}
		log.WarnContext(ctx, "credential refresh failed",
			logger.Error(err),
			logger.Elapsed(start),
		)
		cred = ""
	} else {
		log.InfoContext(ctx, "credential refreshed", logger.Elapsed(start))
	}

	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.inflight = nil
	c.opts.metrics.SetPending(0)
	c.mu.Unlock()

	result := "success"
	if err != nil {
		result = "failure"
	}
	c.opts.metrics.ObserveRefresh(result, time.Since(start))

	if len(queue) > 0 {
		log.DebugContext(ctx, "releasing queued requests", logger.Count("pending", len(queue)), logger.Result(result))
	}
	for _, p := range queue {
		p.resolve(cred, err)
	}

	return cred, err
}

type refreshPayload struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// exchange calls the refresh endpoint with current as bearer proof of the
// prior session. The refresh token, when known, travels in the body.
func (c *Coordinator) exchange(ctx context.Context, current session.Credential) (session.Credential, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := map[string]string{}
	if rt := c.store.RefreshToken(); rt != "" {
		payload["refreshToken"] = rt
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", &RefreshError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", &RefreshError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Authorization", "Bearer "+string(current))
	req.Header.Set(c.cfg.RequestIDHeader, c.opts.idGenerator())

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return "", "", &RefreshError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", &RefreshError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", &RefreshError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("refresh failed with status %d: %s", resp.StatusCode, errorMessage(resp.StatusCode, data)),
		}
	}

	out, err := DecodeInto[refreshPayload](normalize(resp.StatusCode, resp.Header, data))
	if err != nil {
		return "", "", &RefreshError{Status: resp.StatusCode, Err: err}
	}
	if out.Token == "" {
		return "", "", &RefreshError{Status: resp.StatusCode, Err: ErrEmptyToken}
	}

	return session.Credential(out.Token), out.RefreshToken, nil
}
