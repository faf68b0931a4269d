package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/pkg/geo"
)

const (
	DefaultDistanceFilter  = 10.0 // meters
	DefaultInterval        = 15 * time.Second
	DefaultFastestInterval = 10 * time.Second
)

// TrackerConfig controls how often positions are pushed.
//
// A position is pushed when FastestInterval has passed since the last push
// and either the user moved at least DistanceFilter meters or Interval has
// passed.
type TrackerConfig struct {
	DistanceFilter  float64       `env:"NEARBY_TRACKER_DISTANCE_FILTER" envDefault:"10"`
	Interval        time.Duration `env:"NEARBY_TRACKER_INTERVAL" envDefault:"15s"`
	FastestInterval time.Duration `env:"NEARBY_TRACKER_FASTEST_INTERVAL" envDefault:"10s"`
}

// DefaultTrackerConfig returns the default tracker settings.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		DistanceFilter:  DefaultDistanceFilter,
		Interval:        DefaultInterval,
		FastestInterval: DefaultFastestInterval,
	}
}

func (c TrackerConfig) validate() error {
	if c.DistanceFilter < 0 || c.Interval <= 0 || c.FastestInterval < 0 || c.FastestInterval > c.Interval {
		return ErrInvalidConfig
	}
	return nil
}

// Position is a raw fix from a PositionSource. Accuracy is in meters.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// PositionSource produces position fixes until ctx is done, then closes the
// channel.
type PositionSource interface {
	Watch(ctx context.Context) (<-chan Position, error)
}

// Updater pushes a location. *Service satisfies it.
type Updater interface {
	UpdateLocation(ctx context.Context, loc Location) error
}

// Tracker pushes positions from a PositionSource through an Updater,
// throttled by TrackerConfig.
type Tracker struct {
	updater Updater
	source  PositionSource
	clock   clockwork.Clock
	logger  *slog.Logger
	onFix   func(Position, bool)

	// lifeMu guards the loop lifecycle; mu guards settings and push state.
	// The loop only takes mu, so Stop can wait for it while holding lifeMu.
	lifeMu sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	cfg      TrackerConfig
	last     *Location
	lastPush time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock sets the clock used for throttling.
func WithClock(c clockwork.Clock) TrackerOption {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTrackerConfig overrides the default throttling.
func WithTrackerConfig(cfg TrackerConfig) TrackerOption {
	return func(t *Tracker) {
		t.cfg = cfg
	}
}

// WithOnFix registers fn to be called after each fix is handled, with
// pushed reporting whether it was sent.
func WithOnFix(fn func(p Position, pushed bool)) TrackerOption {
	return func(t *Tracker) {
		t.onFix = fn
	}
}

// NewTracker creates a stopped Tracker.
func NewTracker(updater Updater, source PositionSource, opts ...TrackerOption) (*Tracker, error) {
	if updater == nil {
		return nil, ErrNilUpdater
	}
	if source == nil {
		return nil, ErrNilSource
	}

	t := &Tracker{
		updater: updater,
		source:  source,
		clock:   clockwork.NewRealClock(),
		logger:  logger.Discard(),
		cfg:     DefaultTrackerConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.cfg.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Start begins tracking. It is a no-op when already tracking. Tracking stops
// when ctx is done or Stop is called.
func (t *Tracker) Start(ctx context.Context) error {
	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()
	return t.startLocked(ctx)
}

func (t *Tracker) startLocked(ctx context.Context) error {
	if t.cancel != nil {
		select {
		case <-t.done:
			// The loop ended on its own (context done or source closed).
			t.cancel()
			t.cancel = nil
			t.done = nil
		default:
			return nil
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	fixes, err := t.source.Watch(runCtx)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	t.parent = ctx
	t.cancel = cancel
	t.done = done

	go t.run(runCtx, fixes, done)

	t.logger.InfoContext(ctx, "location tracking started", logger.Component("location"))
	return nil
}

// Stop ends tracking and waits for the tracking loop to exit.
func (t *Tracker) Stop() {
	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()
	t.stopLocked()
}

func (t *Tracker) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
	t.logger.Info("location tracking stopped", logger.Component("location"))
}

// IsTracking reports whether the tracking loop is running.
func (t *Tracker) IsTracking() bool {
	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Config returns the current settings.
func (t *Tracker) Config() TrackerConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// UpdateConfig replaces the settings and restarts tracking when running.
func (t *Tracker) UpdateConfig(cfg TrackerConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	t.lifeMu.Lock()
	defer t.lifeMu.Unlock()

	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()

	if t.cancel == nil {
		return nil
	}

	parent := t.parent
	t.stopLocked()
	return t.startLocked(parent)
}

// LastLocation returns the last pushed location.
func (t *Tracker) LastLocation() (Location, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Location{}, false
	}
	return *t.last, true
}

func (t *Tracker) run(ctx context.Context, fixes <-chan Position, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-fixes:
			if !ok {
				return
			}
			pushed := t.handle(ctx, p)
			if t.onFix != nil {
				t.onFix(p, pushed)
			}
		}
	}
}

func (t *Tracker) handle(ctx context.Context, p Position) bool {
	now := t.clock.Now()

	t.mu.Lock()
	cfg := t.cfg
	last := t.last
	lastPush := t.lastPush
	t.mu.Unlock()

	if last != nil {
		elapsed := now.Sub(lastPush)
		if elapsed < cfg.FastestInterval {
			return false
		}
		moved := geo.Distance(last.Latitude, last.Longitude, p.Latitude, p.Longitude)
		if moved < cfg.DistanceFilter && elapsed < cfg.Interval {
			return false
		}
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = now
	}
	loc := Location{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Accuracy:  p.Accuracy,
		Timestamp: ts,
		IsCurrent: true,
	}

	if err := t.updater.UpdateLocation(ctx, loc); err != nil {
		if !errors.Is(err, context.Canceled) {
			t.logger.WarnContext(ctx, "location push failed",
				logger.Component("location"),
				logger.Error(err),
			)
		}
		return false
	}

	t.mu.Lock()
	t.last = &loc
	t.lastPush = now
	t.mu.Unlock()
	return true
}
