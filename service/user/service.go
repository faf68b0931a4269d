package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"path"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/sanitizer"
	"github.com/dmitrymomot/nearby/core/session"
	"github.com/dmitrymomot/nearby/core/validator"
)

// MaxImageSize caps profile image uploads.
const MaxImageSize = 5 << 20

// API is the part of the gateway client the service uses.
// *gateway.Client satisfies it.
type API interface {
	Get(ctx context.Context, path string, opts ...gateway.RequestOption) (*gateway.Response, error)
	Post(ctx context.Context, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
	Put(ctx context.Context, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
	Delete(ctx context.Context, path string, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// SessionStore is the part of the session store the service uses.
// *session.Store satisfies it.
type SessionStore interface {
	User() (session.User, bool)
	UpdateUser(ctx context.Context, fn func(*session.User)) error
	Clear(ctx context.Context) error
}

// Service manages the signed-in user's account and other users' profiles.
type Service struct {
	api    API
	store  SessionStore
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

// New creates a user Service.
func New(api API, store SessionStore, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, ErrNilClient
	}
	if store == nil {
		return nil, ErrNilStore
	}
	s := &Service{api: api, store: store, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetProfile fetches the public profile of userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (*session.User, error) {
	if err := validator.Apply(validator.Required("userId", userID)); err != nil {
		return nil, err
	}

	resp, err := s.api.Get(ctx, "/users/"+url.PathEscape(userID)+"/profile")
	if err != nil {
		return nil, err
	}
	u, err := gateway.DecodeInto[session.User](resp)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Profile fetches the signed-in user's profile and refreshes the session copy.
func (s *Service) Profile(ctx context.Context) (*session.User, error) {
	current, ok := s.store.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	resp, err := s.api.Get(ctx, "/users/"+url.PathEscape(current.ID)+"/profile")
	if err != nil {
		return nil, err
	}
	return s.decodeAndMerge(ctx, resp)
}

// UpdateProfile changes the signed-in user's profile. The returned user is
// nil when the API does not echo the updated document.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileUpdate) (*session.User, error) {
	if err := prepare(&in); err != nil {
		return nil, err
	}
	if err := validateLookingFor(in.LookingFor); err != nil {
		return nil, err
	}

	resp, err := s.api.Put(ctx, "/users/profile", in)
	if err != nil {
		return nil, err
	}
	return s.decodeAndMerge(ctx, resp)
}

// UploadProfileImage uploads an image as multipart form field "image" and
// stores the returned URL on the session user.
func (s *Service) UploadProfileImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("user: read image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	body, contentType, err := multipartImage(filename, data)
	if err != nil {
		return "", err
	}

	resp, err := s.api.Post(ctx, "/users/profile/image", nil, gateway.WithRawBody(contentType, body))
	if err != nil {
		return "", err
	}

	out, err := gateway.DecodeInto[imageResponse](resp)
	if err != nil {
		return "", err
	}
	imageURL := out.ProfileImage
	if imageURL == "" {
		imageURL = out.URL
	}

	if imageURL != "" {
		s.updateSessionUser(ctx, func(u *session.User) { u.ProfileImage = imageURL })
	}
	return imageURL, nil
}

// UpdatePreferences changes notification and visibility settings.
func (s *Service) UpdatePreferences(ctx context.Context, in Preferences) error {
	if err := prepare(&in); err != nil {
		return err
	}

	if _, err := s.api.Put(ctx, "/users/preferences", in); err != nil {
		return err
	}
	if in.PrivacyLevel != nil {
		level := *in.PrivacyLevel
		s.updateSessionUser(ctx, func(u *session.User) { u.PrivacyLevel = level })
	}
	return nil
}

// DeleteAccount deletes the signed-in account and clears the session.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if _, err := s.api.Delete(ctx, "/users/account"); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account deleted", logger.Component("user"))
	return s.store.Clear(ctx)
}

// BlockUser blocks userID.
func (s *Service) BlockUser(ctx context.Context, userID string) error {
	if err := validator.Apply(validator.Required("userId", userID)); err != nil {
		return err
	}
	_, err := s.api.Post(ctx, "/users/"+url.PathEscape(userID)+"/block", nil)
	return err
}

// ReportUser reports userID with a free-text reason.
func (s *Service) ReportUser(ctx context.Context, userID, reason string) error {
	req := reportRequest{Reason: reason}
	if err := prepare(&req); err != nil {
		return err
	}
	if err := validator.Apply(validator.Required("userId", userID)); err != nil {
		return err
	}
	_, err := s.api.Post(ctx, "/users/"+url.PathEscape(userID)+"/report", req)
	return err
}

// UpdateUser changes account fields and merges the result into the session.
// The returned user is nil when the API does not echo the updated document.
func (s *Service) UpdateUser(ctx context.Context, in UserUpdate) (*session.User, error) {
	if err := prepare(&in); err != nil {
		return nil, err
	}

	resp, err := s.api.Put(ctx, "/users", in)
	if err != nil {
		return nil, err
	}
	return s.decodeAndMerge(ctx, resp)
}

func (s *Service) decodeAndMerge(ctx context.Context, resp *gateway.Response) (*session.User, error) {
	u, err := gateway.DecodeInto[session.User](resp)
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	s.mergeUser(ctx, u.ID, resp.Data)
	return &u, nil
}

// mergeUser overlays the fields present in data onto the session user when
// id is the signed-in user.
func (s *Service) mergeUser(ctx context.Context, id string, data json.RawMessage) {
	s.updateSessionUser(ctx, func(cur *session.User) {
		if cur.ID != id {
			return
		}
		merged := *cur
		if err := json.Unmarshal(data, &merged); err == nil {
			*cur = merged
		}
	})
}

func (s *Service) updateSessionUser(ctx context.Context, fn func(*session.User)) {
	err := s.store.UpdateUser(ctx, fn)
	if err != nil && !errors.Is(err, session.ErrPersist) {
		s.logger.DebugContext(ctx, "session user not updated", logger.Component("user"), logger.Error(err))
	}
}

func multipartImage(filename string, data []byte) ([]byte, string, error) {
	if filename == "" {
		filename = "profile.jpg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, path.Base(filename)))
	h.Set("Content-Type", "image/jpeg")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("user: build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("user: build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("user: build upload: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func validateLookingFor(values []string) error {
	allowed := []string{LookingForDating, LookingForFriendship, LookingForTrading, LookingForEvents}
	rules := make([]validator.Rule, 0, len(values))
	for _, v := range values {
		rules = append(rules, validator.OneOf("lookingFor", v, allowed))
	}
	return validator.Apply(rules...)
}

func prepare(v any) error {
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return err
	}
	return validator.ValidateStruct(v)
}
