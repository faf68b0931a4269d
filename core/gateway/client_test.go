package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/session"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := gateway.New(gateway.DefaultConfig("http://localhost"), nil)
	assert.ErrorIs(t, err, gateway.ErrNilStore)

	_, err = gateway.New(gateway.Config{}, session.NewStore())
	assert.ErrorIs(t, err, gateway.ErrMissingBaseURL)
}

func TestClient_Success(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.accept(freshToken)
	client := newTestClient(t, api, newSignedInStore(t, freshToken))

	resp, err := client.Get(context.Background(), "/users/profile")
	require.NoError(t, err)

	out, err := gateway.DecodeInto[payload](resp)
	require.NoError(t, err)
	assert.Equal(t, "/api/users/profile", out.Path)
	assert.Equal(t, freshToken, out.Token)
	assert.Zero(t, api.refreshCalls.Load())
}

// Two requests fail with the same expired credential: one refresh, both
// retried with the new credential.
func TestClient_ConcurrentExpiry(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	gate := api.blockRefresh()
	store := newSignedInStore(t, expiredToken)
	client := newTestClient(t, api, store)

	var wg sync.WaitGroup
	results := make([]*gateway.Response, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = client.Get(context.Background(), "/users/profile")
		}()
	}

	require.Eventually(t, func() bool { return api.rejected.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	for i := range 2 {
		require.NoError(t, errs[i])
		out, err := gateway.DecodeInto[payload](results[i])
		require.NoError(t, err)
		assert.Equal(t, freshToken, out.Token)
	}

	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.ElementsMatch(t, []string{
		"Bearer " + expiredToken,
		"Bearer " + expiredToken,
		"Bearer " + freshToken,
		"Bearer " + freshToken,
	}, api.authHeaders("/api/users/profile"))
	assert.Equal(t, session.Credential(freshToken), store.Credential())
}

// The refresh itself is rejected: the caller sees session expiry and the
// session is cleared.
func TestClient_RefreshRejected(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.setRefreshStatus(http.StatusUnauthorized)
	store := newSignedInStore(t, expiredToken)
	client := newTestClient(t, api, store)

	_, err := client.Get(context.Background(), "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)

	var rerr *gateway.RefreshError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, rerr.Revoked())

	var gerr *gateway.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, gateway.KindSessionExpired, gerr.Kind)
	assert.Equal(t, http.StatusUnauthorized, gerr.Status)

	assert.False(t, store.IsAuthenticated())
	assert.True(t, store.Credential().IsZero())
	assert.Len(t, api.authHeaders("/api/data"), 1)
}

// A non-401 failure passes through untouched and never refreshes.
func TestClient_TransportErrorPassesThrough(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.accept(freshToken)
	api.setStatus("/api/orders", http.StatusInternalServerError)
	store := newSignedInStore(t, freshToken)
	client := newTestClient(t, api, store)

	_, err := client.Post(context.Background(), "/orders", map[string]int{"qty": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrTransport)

	var gerr *gateway.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusInternalServerError, gerr.Status)
	assert.Equal(t, "order service unavailable", gerr.Message)

	assert.Zero(t, api.refreshCalls.Load())
	assert.Len(t, api.authHeaders("/api/orders"), 1)
	assert.True(t, store.IsAuthenticated())
}

// The replay is rejected again: exactly one refresh, exactly one replay,
// then session expiry.
func TestClient_RetryRejected(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.rejectAlways("/api/users/profile")
	store := newSignedInStore(t, expiredToken)
	client := newTestClient(t, api, store)

	_, err := client.Get(context.Background(), "/users/profile")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.False(t, errors.Is(err, gateway.ErrUnauthorized))

	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.Equal(t, []string{
		"Bearer " + expiredToken,
		"Bearer " + freshToken,
	}, api.authHeaders("/api/users/profile"))
}

func TestClient_RetriedEnvelopeNeverRefreshes(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, newSignedInStore(t, expiredToken))

	env, err := gateway.NewEnvelope(http.MethodGet, "/users/profile", nil)
	require.NoError(t, err)

	_, err = client.Send(context.Background(), env.Retried())
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.Zero(t, api.refreshCalls.Load())
	assert.Len(t, api.authHeaders("/api/users/profile"), 1)
}

func TestClient_ManyConcurrentRequestsShareOneRefresh(t *testing.T) {
	t.Parallel()

	const requests = 20

	api := newFakeAPI(t)
	gate := api.blockRefresh()
	client := newTestClient(t, api, newSignedInStore(t, expiredToken))

	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get(context.Background(), "/location/nearby")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return api.rejected.Load() == requests }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, client.IsRefreshing())
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.Len(t, api.authHeaders("/api/location/nearby"), 2*requests)
	assert.False(t, client.IsRefreshing())
}

func TestClient_ForcedLogoutRejectsEveryWaiter(t *testing.T) {
	t.Parallel()

	const requests = 5

	api := newFakeAPI(t)
	api.setRefreshStatus(http.StatusBadRequest)
	gate := api.blockRefresh()
	store := newSignedInStore(t, expiredToken)
	client := newTestClient(t, api, store)

	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get(context.Background(), "/users/profile")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return api.rejected.Load() == requests }, 2*time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.False(t, store.IsAuthenticated())
	// No replays were issued.
	assert.Len(t, api.authHeaders("/api/users/profile"), requests)
}

func TestClient_CanceledWhileWaitingIsTransport(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	gate := api.blockRefresh()
	store := newSignedInStore(t, expiredToken)
	client := newTestClient(t, api, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Get(ctx, "/users/profile")
		done <- err
	}()

	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, gateway.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool { return !client.IsRefreshing() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, session.Credential(freshToken), store.Credential())
}

func TestClient_PutAndDelete(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.accept(freshToken)
	client := newTestClient(t, api, newSignedInStore(t, freshToken))

	_, err := client.Put(context.Background(), "/users/preferences", map[string]int{"privacyLevel": 2})
	require.NoError(t, err)
	_, err = client.Delete(context.Background(), "/users/account")
	require.NoError(t, err)

	assert.Len(t, api.authHeaders("/api/users/preferences"), 1)
	assert.Len(t, api.authHeaders("/api/users/account"), 1)
}

func TestClient_InvalidBody(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, newSignedInStore(t, freshToken))

	_, err := client.Post(context.Background(), "/x", make(chan int))
	assert.ErrorIs(t, err, gateway.ErrTransport)
}
