package location

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/realtime"
	"github.com/dmitrymomot/nearby/core/sanitizer"
	"github.com/dmitrymomot/nearby/core/validator"
)

// API is the part of the gateway client the service uses.
// *gateway.Client satisfies it.
type API interface {
	Get(ctx context.Context, path string, opts ...gateway.RequestOption) (*gateway.Response, error)
	Post(ctx context.Context, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// Realtime is the part of the socket client the service uses.
// *realtime.Client satisfies it.
type Realtime interface {
	IsConnected() bool
	Emit(ctx context.Context, event string, payload any) error
	On(event string, handler realtime.Handler)
	Off(event string)
}

// Service reports the user's position and queries other users' positions.
type Service struct {
	api    API
	rt     Realtime
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRealtime enables realtime emits and subscriptions.
func WithRealtime(rt Realtime) Option {
	return func(s *Service) {
		s.rt = rt
	}
}

// New creates a location Service.
func New(api API, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, ErrNilClient
	}
	s := &Service{api: api, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpdateLocation stores loc and, when the socket is connected, broadcasts it
// as a location-update event. A failed broadcast is logged, not returned.
func (s *Service) UpdateLocation(ctx context.Context, loc Location) error {
	if err := validator.ValidateStruct(&loc); err != nil {
		return err
	}

	if _, err := s.api.Post(ctx, "/location/update", loc); err != nil {
		return err
	}

	if s.rt != nil && s.rt.IsConnected() {
		if err := s.rt.Emit(ctx, EventLocationUpdate, loc); err != nil {
			s.logger.WarnContext(ctx, "location broadcast failed",
				logger.Component("location"),
				logger.Event(EventLocationUpdate),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NearbyUsers returns users within q.Radius meters of the given point.
func (s *Service) NearbyUsers(ctx context.Context, q NearbyQuery) ([]NearbyUser, error) {
	if err := validator.ValidateStruct(&q); err != nil {
		return nil, err
	}

	resp, err := s.api.Get(ctx, "/location/nearby",
		gateway.WithQueryParam("latitude", formatFloat(q.Latitude)),
		gateway.WithQueryParam("longitude", formatFloat(q.Longitude)),
		gateway.WithQueryParam("radius", formatFloat(q.Radius)),
	)
	if err != nil {
		return nil, err
	}
	return gateway.DecodeInto[[]NearbyUser](resp)
}

// History returns up to limit past positions of userID, newest first as
// ordered by the API. limit <= 0 uses DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]UserLocation, error) {
	if err := validator.Apply(validator.Required("userId", userID)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	resp, err := s.api.Get(ctx, "/location/history/"+url.PathEscape(userID),
		gateway.WithQueryParam("limit", strconv.Itoa(limit)),
	)
	if err != nil {
		return nil, err
	}
	return gateway.DecodeInto[[]UserLocation](resp)
}

// UpdatePrivacy changes map visibility.
func (s *Service) UpdatePrivacy(ctx context.Context, settings PrivacySettings) error {
	if err := validator.ValidateStruct(&settings); err != nil {
		return err
	}
	_, err := s.api.Post(ctx, "/location/privacy", settings)
	return err
}

// CreateGeofence registers a geofence.
func (s *Service) CreateGeofence(ctx context.Context, g Geofence) error {
	if err := sanitizer.SanitizeStruct(&g); err != nil {
		return err
	}
	if err := validator.ValidateStruct(&g); err != nil {
		return err
	}
	_, err := s.api.Post(ctx, "/location/geofence", g)
	return err
}

// Subscribe registers handler for nearby-user-update and
// user-location-changed events.
func (s *Service) Subscribe(handler UpdateHandler) error {
	if s.rt == nil {
		return ErrRealtimeDisabled
	}
	for _, event := range []string{EventNearbyUserUpdate, EventUserLocationChanged} {
		s.rt.On(event, func(data json.RawMessage) { handler(event, data) })
	}
	return nil
}

// Unsubscribe removes every handler for the location events.
func (s *Service) Unsubscribe() {
	if s.rt == nil {
		return
	}
	s.rt.Off(EventNearbyUserUpdate)
	s.rt.Off(EventUserLocationChanged)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
