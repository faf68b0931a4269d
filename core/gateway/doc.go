// Package gateway is the authenticated HTTP client for the Nearby API.
//
// It attaches the current bearer credential and an X-Request-ID to every call,
// notices when the API rejects the credential, refreshes it exactly once even
// when many requests fail at the same moment, replays the waiting requests
// with the new credential and ends the session when the refresh fails.
//
// # Components
//
//   - Dispatcher sends one request and classifies the result: a normalized
//     Response for 2xx, KindUnauthorized for 401, KindTransport otherwise.
//   - Coordinator performs single-flight credential refresh against
//     POST {base}/auth/refresh. Callers arriving while a refresh is in flight
//     are queued and released in FIFO order when it settles.
//   - Client combines both and exposes Get, Post, Put, Delete and Do.
//
// # Usage
//
//	store := session.NewStore()
//	client, err := gateway.New(gateway.DefaultConfig("https://api.example.com/api"), store,
//		gateway.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	resp, err := client.Get(ctx, "/users/42/profile")
//	switch {
//	case errors.Is(err, gateway.ErrSessionExpired):
//		// route the user to login
//	case err != nil:
//		var gerr *gateway.Error
//		if errors.As(err, &gerr) {
//			log.Printf("api error %d: %s", gerr.Status, gerr.Message)
//		}
//	}
//
//	profile, err := gateway.DecodeInto[Profile](resp)
//
// # Retry rules
//
// A request is dispatched at most twice. After a 401 the Client asks the
// Coordinator for a fresh credential and replays an Envelope copy with
// RetryAttempted set. A second 401 is reported as ErrSessionExpired without
// another refresh. Transport errors (network failures, 4xx/5xx other than
// 401) are never retried here.
//
// A failed refresh clears the session and every queued request receives
// ErrSessionExpired. A refresh whose session was replaced by a new login in
// the meantime writes nothing and leaves that login alone. If a request is rejected with a credential that has
// already been replaced, it is replayed with the current one and no new
// refresh is started.
//
// # Configuration
//
// Config is loadable from the environment with core/config:
//
//	var cfg gateway.Config
//	config.MustLoad(&cfg) // NEARBY_API_BASE_URL, NEARBY_API_TIMEOUT, ...
//
// Every call is bounded by Config.Timeout (10s by default).
package gateway
