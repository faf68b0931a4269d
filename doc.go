// Package nearby is a Go client for the Nearby location-based social API.
//
// A Client bundles one signed-in session with everything that talks to the
// API on its behalf: an authenticated gateway that refreshes expired
// credentials once for all concurrent callers, a realtime socket, and the
// auth, user and location services.
//
//	cfg, err := nearby.LoadConfig()
//	if err != nil {
//		return err
//	}
//	c, err := nearby.Open(ctx, cfg, nearby.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if !c.Session.IsAuthenticated() {
//		if err := c.Auth.SendVerificationCode(ctx, phone); err != nil {
//			return err
//		}
//		// ...
//	}
//
//	users, err := c.Location.NearbyUsers(ctx, location.NearbyQuery{
//		Latitude: 52.52, Longitude: 13.405, Radius: 500,
//	})
//	if errors.Is(err, gateway.ErrSessionExpired) {
//		// credential refresh failed; the session was cleared
//	}
//
// # Packages
//
//	github.com/dmitrymomot/nearby/core/session    - Process-wide session store with pluggable persistence
//	github.com/dmitrymomot/nearby/core/gateway    - Request dispatcher, single-flight credential refresh, retrying client
//	github.com/dmitrymomot/nearby/core/realtime   - Websocket client for location events
//	github.com/dmitrymomot/nearby/core/config     - Type-safe environment variable loading
//	github.com/dmitrymomot/nearby/core/logger     - Structured logging on log/slog
//	github.com/dmitrymomot/nearby/core/sanitizer  - Tag-driven input cleaning
//	github.com/dmitrymomot/nearby/core/validator  - Tag-driven input validation
//	github.com/dmitrymomot/nearby/service/auth    - Phone login, signup, logout
//	github.com/dmitrymomot/nearby/service/user    - Profiles, preferences, blocking and reporting
//	github.com/dmitrymomot/nearby/service/location - Location updates, nearby search, tracking
//	github.com/dmitrymomot/nearby/pkg/async       - Futures
//	github.com/dmitrymomot/nearby/pkg/geo         - Great-circle distance
//	github.com/dmitrymomot/nearby/integration/database/redis - Redis session persister
//	github.com/dmitrymomot/nearby/integration/database/pg    - PostgreSQL session persister and migrations
//
// # Session backends
//
// NEARBY_SESSION_BACKEND selects where Open keeps the session: "memory"
// (default), "redis" or "postgres". New never connects anywhere; pass
// WithPersister to give it one.
package nearby
