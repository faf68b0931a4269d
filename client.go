package nearby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/realtime"
	"github.com/dmitrymomot/nearby/core/session"
	"github.com/dmitrymomot/nearby/integration/database/pg"
	"github.com/dmitrymomot/nearby/integration/database/redis"
	"github.com/dmitrymomot/nearby/service/auth"
	"github.com/dmitrymomot/nearby/service/location"
	"github.com/dmitrymomot/nearby/service/user"
)

// Client bundles the session store, the gateway and the API services.
type Client struct {
	Session  *session.Store
	API      *gateway.Client
	Realtime *realtime.Client
	Auth     *auth.Service
	Users    *user.Service
	Location *location.Service

	cfg         Config
	logger      *slog.Logger
	unsubscribe func()
	checks      map[string]func(context.Context) error
	closers     []func() error
	closeOnce   sync.Once
}

// New wires a Client without touching any backend. The session lives in
// memory unless WithPersister is given; Config.SessionBackend is ignored.
func New(cfg Config, opts ...Option) (*Client, error) {
	return build(cfg, buildOptions(opts))
}

// Open connects the session backend selected by cfg.SessionBackend, wires
// the Client and restores the persisted session.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := buildOptions(opts)

	checks := make(map[string]func(context.Context) error)
	var closers []func() error

	if o.persister == nil {
		switch cfg.SessionBackend {
		case "", BackendMemory:
			o.persister = session.NewMemoryPersister()

		case BackendRedis:
			rdb, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return nil, err
			}
			p, err := redis.NewSessionPersister(rdb, cfg.Redis.SessionKey, cfg.Redis.SessionTTL)
			if err != nil {
				_ = rdb.Close()
				return nil, err
			}
			o.persister = p
			checks["redis"] = redis.Healthcheck(rdb)
			closers = append(closers, rdb.Close)

		case BackendPostgres:
			pool, err := pg.Connect(ctx, cfg.Postgres)
			if err != nil {
				return nil, err
			}
			if err := pg.Migrate(ctx, pool, cfg.Postgres, o.logger); err != nil {
				pool.Close()
				return nil, err
			}
			p, err := pg.NewSessionPersister(pool, cfg.Postgres.SessionKey)
			if err != nil {
				pool.Close()
				return nil, err
			}
			o.persister = p
			checks["postgres"] = pg.Healthcheck(pool)
			closers = append(closers, func() error {
				pool.Close()
				return nil
			})

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.SessionBackend)
		}
	}

	c, err := build(cfg, o)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	c.checks = checks
	c.closers = closers

	if err := c.Restore(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func build(cfg Config, o *options) (*Client, error) {
	if cfg.Tracker == (location.TrackerConfig{}) {
		cfg.Tracker = location.DefaultTrackerConfig()
	}

	store := session.NewStore(
		session.WithPersister(o.persister),
		session.WithLogger(o.logger),
	)

	gwOpts := []gateway.Option{gateway.WithLogger(o.logger)}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}
	if o.registerer != nil {
		m, err := gateway.NewPrometheusMetrics(o.registerer)
		if err != nil {
			return nil, err
		}
		gwOpts = append(gwOpts, gateway.WithMetrics(m))
	}
	api, err := gateway.New(cfg.Gateway, store, gwOpts...)
	if err != nil {
		return nil, err
	}

	rtOpts := []realtime.Option{realtime.WithLogger(o.logger)}
	if o.dialer != nil {
		rtOpts = append(rtOpts, realtime.WithDialer(o.dialer))
	}
	rt := realtime.New(cfg.Realtime, store, rtOpts...)

	authSvc, err := auth.New(api, store, auth.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	userSvc, err := user.New(api, store, user.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	locOpts := []location.Option{location.WithLogger(o.logger)}
	if rt.Enabled() {
		locOpts = append(locOpts, location.WithRealtime(rt))
	}
	locSvc, err := location.New(api, locOpts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Session:  store,
		API:      api,
		Realtime: rt,
		Auth:     authSvc,
		Users:    userSvc,
		Location: locSvc,
		cfg:      cfg,
		logger:   o.logger,
		checks:   map[string]func(context.Context) error{},
	}
	c.unsubscribe = store.Subscribe(c.onSessionChange)
	return c, nil
}

// Restore rehydrates the persisted session.
func (c *Client) Restore(ctx context.Context) error {
	return c.Session.Restore(ctx)
}

// NewTracker creates a location tracker that pushes positions from source
// through the location service, using the configured throttling.
func (c *Client) NewTracker(source location.PositionSource, opts ...location.TrackerOption) (*location.Tracker, error) {
	base := []location.TrackerOption{
		location.WithTrackerConfig(c.cfg.Tracker),
		location.WithTrackerLogger(c.logger),
	}
	return location.NewTracker(c.Location, source, append(base, opts...)...)
}

// Healthcheck probes the session backend. It returns nil for the in-memory
// backend.
func (c *Client) Healthcheck(ctx context.Context) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(c.checks)) {
		if err := c.checks[name](ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close disconnects the realtime socket and releases backend connections.
// The session itself is kept. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.unsubscribe()
		err = c.Realtime.Close()
		closeAll(c.closers)
	})
	return err
}

// onSessionChange drops the socket once the session ends. The socket is
// closed from its own goroutine because the change may be triggered from a
// realtime handler.
func (c *Client) onSessionChange(s session.Session) {
	if s.IsAuthenticated || !c.Realtime.IsConnected() {
		return
	}
	go func() {
		if err := c.Realtime.Close(); err != nil {
			c.logger.Warn("realtime close after logout failed",
				logger.Component("nearby"),
				logger.Error(err),
			)
		}
	}()
}

func closeAll(closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i]()
	}
}

func buildOptions(opts []Option) *options {
	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
