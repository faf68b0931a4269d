package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/session"
	"github.com/dmitrymomot/nearby/core/validator"
	"github.com/dmitrymomot/nearby/service/user"
)

type recorded struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

type fixture struct {
	srv   *httptest.Server
	store *session.Store
	svc   *user.Service

	mu       sync.Mutex
	requests []recorded
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	f := &fixture{store: session.NewStore()}
	require.NoError(t, f.store.Authenticate(context.Background(), "tok", "ref", session.User{
		ID:           "me",
		DisplayName:  "Jane",
		PrivacyLevel: session.PrivacyPublic,
	}))

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recorded{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)

	client, err := gateway.New(gateway.DefaultConfig(f.srv.URL), f.store)
	require.NoError(t, err)
	f.svc, err = user.New(client, f.store)
	require.NoError(t, err)
	return f
}

func (f *fixture) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fixture) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func ptr[T any](v T) *T { return &v }

func TestGetProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u-2", "displayName": "Bob"}})
	})

	u, err := f.svc.GetProfile(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.DisplayName)
	assert.Equal(t, "/users/u-2/profile", f.last(t).Path)

	// Another user's profile does not touch the session.
	me, _ := f.store.User()
	assert.Equal(t, "Jane", me.DisplayName)

	_, err = f.svc.GetProfile(context.Background(), "")
	assert.True(t, validator.IsValidationError(err))
}

func TestProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "me", "displayName": "Jane Doe"})
	})

	u, err := f.svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.DisplayName)
	assert.Equal(t, "/users/me/profile", f.last(t).Path)

	me, _ := f.store.User()
	assert.Equal(t, "Jane Doe", me.DisplayName)

	require.NoError(t, f.store.Clear(context.Background()))
	_, err = f.svc.Profile(context.Background())
	assert.ErrorIs(t, err, user.ErrNotAuthenticated)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"id":      "me",
			"profile": map[string]any{"bio": "Climber", "ageMin": 25},
		}})
	})

	u, err := f.svc.UpdateProfile(context.Background(), user.ProfileUpdate{
		Bio:        ptr("  <i>Climber</i> "),
		AgeMin:     ptr(25),
		LookingFor: []string{user.LookingForFriendship},
	})
	require.NoError(t, err)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Climber", u.Profile.Bio)

	req := f.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/users/profile", req.Path)
	assert.JSONEq(t, `{"bio":"Climber","ageMin":25,"lookingFor":["friendship"]}`, string(req.Body))

	me, _ := f.store.User()
	require.NotNil(t, me.Profile)
	assert.Equal(t, "Climber", me.Profile.Bio)
	assert.Equal(t, "Jane", me.DisplayName, "fields absent from the response are kept")
}

func TestUpdateProfile_Invalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ok)

	_, err := f.svc.UpdateProfile(context.Background(), user.ProfileUpdate{AgeMin: ptr(12)})
	assert.True(t, validator.ExtractValidationErrors(err).Has("ageMin"))

	_, err = f.svc.UpdateProfile(context.Background(), user.ProfileUpdate{LookingFor: []string{"romance"}})
	assert.True(t, validator.ExtractValidationErrors(err).Has("lookingFor"))

	assert.Zero(t, f.count())
}

func TestUploadProfileImage(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		filename string
		content  []byte
		partType string
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "not multipart"})
			return
		}
		part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		data, _ := io.ReadAll(part)

		mu.Lock()
		filename = part.FileName()
		content = data
		partType = part.Header.Get("Content-Type")
		mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"profileImage": "https://cdn.example.com/me.jpg"}})
	})

	got, err := f.svc.UploadProfileImage(context.Background(), "/tmp/selfie.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.jpg", got)

	mu.Lock()
	assert.Equal(t, "selfie.jpg", filename)
	assert.Equal(t, "jpeg-bytes", string(content))
	assert.Equal(t, "image/jpeg", partType)
	mu.Unlock()

	me, _ := f.store.User()
	assert.Equal(t, "https://cdn.example.com/me.jpg", me.ProfileImage)
}

func TestUploadProfileImage_Limits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ok)

	_, err := f.svc.UploadProfileImage(context.Background(), "a.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, user.ErrEmptyImage)

	_, err = f.svc.UploadProfileImage(context.Background(), "a.jpg", bytes.NewReader(make([]byte, user.MaxImageSize+1)))
	assert.ErrorIs(t, err, user.ErrImageTooLarge)

	assert.Zero(t, f.count())
}

// A multipart upload that hits an expired credential is replayed intact.
func TestUploadProfileImage_ReplayedAfterRefresh(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var uploads []string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/refresh":
			writeJSON(w, http.StatusOK, map[string]any{"token": "tok-2"})
		case r.Header.Get("Authorization") != "Bearer tok-2":
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "expired"})
		default:
			_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
				return
			}
			data, _ := io.ReadAll(part)
			mu.Lock()
			uploads = append(uploads, string(data))
			mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{"url": "https://cdn.example.com/2.jpg"})
		}
	})

	got, err := f.svc.UploadProfileImage(context.Background(), "a.jpg", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/2.jpg", got)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pixels"}, uploads)
}

func TestUpdatePreferences(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ok)

	level := session.PrivacyFriends
	require.NoError(t, f.svc.UpdatePreferences(context.Background(), user.Preferences{
		ShowOnMap:    ptr(false),
		PrivacyLevel: &level,
	}))

	req := f.last(t)
	assert.Equal(t, "/users/preferences", req.Path)
	assert.JSONEq(t, `{"showOnMap":false,"privacyLevel":2}`, string(req.Body))

	me, _ := f.store.User()
	assert.Equal(t, session.PrivacyFriends, me.PrivacyLevel)

	bad := session.PrivacyLevel(4)
	err := f.svc.UpdatePreferences(context.Background(), user.Preferences{PrivacyLevel: &bad})
	assert.True(t, validator.ExtractValidationErrors(err).Has("privacyLevel"))
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	t.Run("clears session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, ok)

		require.NoError(t, f.svc.DeleteAccount(context.Background()))
		assert.Equal(t, http.MethodDelete, f.last(t).Method)
		assert.Equal(t, "/users/account", f.last(t).Path)
		assert.False(t, f.store.IsAuthenticated())
	})

	t.Run("keeps session on failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "nope"})
		})

		err := f.svc.DeleteAccount(context.Background())
		assert.ErrorIs(t, err, gateway.ErrTransport)
		assert.True(t, f.store.IsAuthenticated())
	})
}

func TestBlockAndReport(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ok)

	require.NoError(t, f.svc.BlockUser(context.Background(), "u-9"))
	assert.Equal(t, "/users/u-9/block", f.last(t).Path)

	require.NoError(t, f.svc.ReportUser(context.Background(), "u-9", " <b>spam</b> "))
	req := f.last(t)
	assert.Equal(t, "/users/u-9/report", req.Path)
	assert.JSONEq(t, `{"reason":"spam"}`, string(req.Body))

	err := f.svc.ReportUser(context.Background(), "u-9", "   ")
	assert.True(t, validator.ExtractValidationErrors(err).Has("reason"))
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "me", "displayName": "Janet", "gender": "female"}})
	})

	u, err := f.svc.UpdateUser(context.Background(), user.UserUpdate{
		DisplayName: ptr("Janet"),
		Gender:      ptr(" Female "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", u.DisplayName)

	req := f.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/users", req.Path)
	assert.JSONEq(t, `{"displayName":"Janet","gender":"female"}`, string(req.Body))

	me, _ := f.store.User()
	assert.Equal(t, "Janet", me.DisplayName)
	assert.Equal(t, "female", me.Gender)
}
