package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/nearby/core/gateway"
	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/sanitizer"
	"github.com/dmitrymomot/nearby/core/session"
	"github.com/dmitrymomot/nearby/core/validator"
	"github.com/dmitrymomot/nearby/pkg/ratelimiter"
)

// DefaultSendCodeLimit allows three verification texts per phone number,
// regaining one per minute.
var DefaultSendCodeLimit = ratelimiter.Config{
	Capacity:       3,
	RefillRate:     1,
	RefillInterval: time.Minute,
}

// API is the part of the gateway client the service uses.
// *gateway.Client satisfies it.
type API interface {
	Post(ctx context.Context, path string, body any, opts ...gateway.RequestOption) (*gateway.Response, error)
}

// SessionStore is the part of the session store the service uses.
// *session.Store satisfies it.
type SessionStore interface {
	IsAuthenticated() bool
	Authenticate(ctx context.Context, cred session.Credential, refreshToken string, user session.User) error
	Clear(ctx context.Context) error
}

// Service signs users in and out.
type Service struct {
	api      API
	store    SessionStore
	logger   *slog.Logger
	sendCode *ratelimiter.Limiter
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

// WithSendCodeLimiter replaces the limiter guarding SendVerificationCode.
func WithSendCodeLimiter(l *ratelimiter.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.sendCode = l
		}
	}
}

// New creates an auth Service.
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
	if s.sendCode == nil {
		l, err := ratelimiter.New(DefaultSendCodeLimit)
		if err != nil {
			return nil, err
		}
		s.sendCode = l
	}
	return s, nil
}

// SendVerificationCode asks the API to text a login code to phone.
// Requests for the same number are throttled locally; a throttled call
// returns *ThrottledError without contacting the API.
func (s *Service) SendVerificationCode(ctx context.Context, phone string) error {
	req := sendCodeRequest{PhoneNumber: phone}
	if err := prepare(&req); err != nil {
		return err
	}

	res, err := s.sendCode.Allow(ctx, req.PhoneNumber)
	if err != nil {
		return err
	}
	if !res.Allowed {
		s.logger.InfoContext(ctx, "verification code throttled",
			logger.Component("auth"),
			slog.Duration("retry_after", res.RetryAfter),
		)
		return &ThrottledError{RetryAfter: res.RetryAfter}
	}

	resp, err := s.api.Post(ctx, "/auth/send-code", req)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Message != "" {
			return errors.Join(ErrVerificationNotSent, errors.New(resp.Message))
		}
		return ErrVerificationNotSent
	}
	return nil
}

// LoginWithPhone exchanges a verification code for a session.
func (s *Service) LoginWithPhone(ctx context.Context, creds LoginCredentials) (*Result, error) {
	if err := prepare(&creds); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "/auth/login", creds)
}

// Signup creates an account and signs it in.
func (s *Service) Signup(ctx context.Context, data SignupData) (*Result, error) {
	if err := prepare(&data); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "/auth/signup", data)
}

// Logout ends the session. The server call is best effort: a failure is
// logged and the local session is cleared regardless. While signed out the
// server is not called, but leftover state is still reset.
func (s *Service) Logout(ctx context.Context) error {
	if s.store.IsAuthenticated() {
		if _, err := s.api.Post(ctx, "/auth/logout", nil); err != nil {
			s.logger.WarnContext(ctx, "logout request failed",
				logger.Component("auth"),
				logger.Error(err),
			)
		}
	}

	return s.store.Clear(ctx)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*Result, error) {
	resp, err := s.api.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	res, err := gateway.DecodeInto[Result](resp)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, ErrMissingToken
	}
	if res.User.ID == "" {
		return nil, ErrMissingUser
	}

	if err := s.store.Authenticate(ctx, session.Credential(res.Token), res.RefreshToken, res.User); err != nil {
		if !errors.Is(err, session.ErrPersist) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "session not persisted", logger.Component("auth"), logger.Error(err))
	}

	s.logger.InfoContext(ctx, "signed in",
		logger.Component("auth"),
		logger.UserID(res.User.ID),
		slog.Bool("new_user", res.IsNewUser),
	)
	return &res, nil
}

func prepare(v any) error {
	if err := sanitizer.SanitizeStruct(v); err != nil {
		return err
	}
	return validator.ValidateStruct(v)
}
