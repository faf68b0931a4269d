// Package session holds the single authentication session of the process.
//
// A Session carries the bearer Credential, the refresh token and the signed-in
// User. The Store owns it and exposes read operations (Credential, Snapshot,
// User) and a small set of explicit writers:
//
//   - Authenticate populates the session after login or signup
//   - SetCredential replaces the credential after a token refresh, but only
//     while the refreshed credential is still the current one
//   - SetUser and UpdateUser change user fields
//   - Clear resets everything on logout; ClearCredential does the same for a
//     failed refresh unless a newer login already replaced the credential
//
// There are no exported mutable fields, so every write is visible in one place.
//
// # Persistence
//
// The "auth" and "user" fields survive restarts through a Persister:
//
//	store := session.NewStore(session.WithPersister(redisPersister))
//	if err := store.Restore(ctx); err != nil {
//		log.Printf("starting with an empty session: %v", err)
//	}
//
// MemoryPersister is provided for tests; Redis and PostgreSQL implementations
// live under integration/database. Marshal and Unmarshal define the stored
// document:
//
//	{"auth": {"isAuthenticated": true, "token": "...", "refreshToken": "..."}, "user": {...}}
//
// A failed Save leaves the in-memory session updated and returns an error
// wrapping ErrPersist. Clear always resets in-memory state. Persister calls run
// outside the read lock, so a slow backend never delays Credential or Snapshot.
//
// # Change notifications
//
//	unsubscribe := store.Subscribe(func(s session.Session) {
//		if !s.IsAuthenticated {
//			showLogin()
//		}
//	})
//	defer unsubscribe()
package session
