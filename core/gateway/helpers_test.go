package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/session"
)

const (
	expiredToken = "expired-token-0001"
	freshToken   = "fresh-token-0002"
)

// fakeAPI emulates the Nearby API: any path answers 200 for a valid bearer
// token and 401 otherwise; /api/auth/refresh issues freshToken.
type fakeAPI struct {
	srv *httptest.Server

	mu            sync.Mutex
	valid         map[string]bool
	authByPath    map[string][]string
	requestIDs    []string
	statusByPath  map[string]int
	alwaysReject  map[string]bool
	refreshStatus int
	refreshBodies []string
	refreshGate   chan struct{}

	refreshCalls atomic.Int32
	rejected     atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		valid:         map[string]bool{},
		authByPath:    map[string][]string{},
		statusByPath:  map[string]int{},
		alwaysReject:  map[string]bool{},
		refreshStatus: http.StatusOK,
	}
	api.srv = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *fakeAPI) baseURL() string {
	return a.srv.URL + "/api"
}

func (a *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")

	if r.URL.Path == "/api/auth/refresh" {
		a.handleRefresh(w, r, token)
		return
	}

	a.mu.Lock()
	a.authByPath[r.URL.Path] = append(a.authByPath[r.URL.Path], auth)
	a.requestIDs = append(a.requestIDs, r.Header.Get("X-Request-ID"))
	status, forced := a.statusByPath[r.URL.Path]
	reject := a.alwaysReject[r.URL.Path] || !a.valid[token]
	a.mu.Unlock()

	if forced {
		writeJSON(w, status, map[string]any{"message": "order service unavailable", "success": false})
		return
	}
	if reject {
		a.rejected.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"path":  r.URL.Path,
			"token": token,
			"query": r.URL.RawQuery,
		},
	})
}

func (a *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request, token string) {
	a.refreshCalls.Add(1)

	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.mu.Lock()
	a.refreshBodies = append(a.refreshBodies, token+"|"+body["refreshToken"])
	gate := a.refreshGate
	status := a.refreshStatus
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{"message": "refresh token expired"})
		return
	}

	a.mu.Lock()
	delete(a.valid, token)
	a.valid[freshToken] = true
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]string{"token": freshToken, "refreshToken": "refresh-2"},
	})
}

func (a *fakeAPI) accept(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.valid[token] = true
}

func (a *fakeAPI) blockRefresh() chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshGate = make(chan struct{})
	return a.refreshGate
}

func (a *fakeAPI) setRefreshStatus(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshStatus = status
}

func (a *fakeAPI) setStatus(path string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusByPath[path] = status
}

func (a *fakeAPI) rejectAlways(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alwaysReject[path] = true
}

func (a *fakeAPI) authHeaders(path string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.authByPath[path]...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newSignedInStore(t *testing.T, token string) *session.Store {
	t.Helper()
	store := session.NewStore()
	require.NoError(t, store.Authenticate(context.Background(), session.Credential(token), "refresh-1", session.User{ID: "u-1"}))
	return store
}

func newTestClient(t *testing.T, api *fakeAPI, store *session.Store, opts ...gateway.Option) *gateway.Client {
	t.Helper()
	client, err := gateway.New(gateway.DefaultConfig(api.baseURL()), store, opts...)
	require.NoError(t, err)
	return client
}

type payload struct {
	Path  string `json:"path"`
	Token string `json:"token"`
	Query string `json:"query"`
}
