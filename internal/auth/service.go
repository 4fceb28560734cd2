package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"console/internal/logger"
)

// ErrNotVerified is returned by Login when the account exists but the email
// was never confirmed. The caller should send the user to the verification
// flow; a fresh verification window is already open at that point.
var ErrNotVerified = errors.New("auth: account not verified")

// Service coordinates the auth backend proxy flows: login and registration,
// the email verification window, and the gateway-side session cache.
type Service struct {
	provider Provider
	sessions SessionStore
	pending  *VerificationTracker
}

// NewService creates the auth service.
func NewService(provider Provider, sessions SessionStore) *Service {
	return &Service{
		provider: provider,
		sessions: sessions,
		pending:  NewVerificationTracker(),
	}
}

// Login proxies the credentials to the auth backend and caches the returned
// session. An unverified account yields ErrNotVerified and reopens the
// verification window for the email.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := s.provider.Login(ctx, email, password)
	if err != nil {
		if IsNotVerified(err) {
			s.pending.Begin(email)
			return nil, fmt.Errorf("%w: %s", ErrNotVerified, email)
		}
		return nil, err
	}

	s.cacheSession(ctx, resp)
	return resp, nil
}

// Register proxies the registration and opens the verification window. The
// backend sends the first code itself, so the resend cooldown starts now.
func (s *Service) Register(ctx context.Context, reg Registration) error {
	if err := s.provider.Register(ctx, reg); err != nil {
		return err
	}
	s.pending.Begin(reg.Email)
	return nil
}

// Verify submits the email code. An expired window rejects the attempt
// without reaching the backend; with no window at all the backend stays
// authoritative. Success closes the window and caches the session when the
// backend issued a token.
func (s *Service) Verify(ctx context.Context, email, code string) (*AuthResponse, error) {
	if err := s.pending.Check(email); errors.Is(err, ErrVerificationExpired) {
		return nil, err
	}

	resp, err := s.provider.VerifyAccount(ctx, email, code)
	if err != nil {
		return nil, err
	}

	s.pending.Complete(email)
	s.cacheSession(ctx, resp)
	return resp, nil
}

// Resend asks the backend for a new code, honoring the cooldown. A
// successful resend restarts the verification window.
func (s *Service) Resend(ctx context.Context, email string) error {
	if err := s.pending.CanResend(email); err != nil {
		return err
	}
	if err := s.provider.ResendCode(ctx, email); err != nil {
		return err
	}
	s.pending.MarkResent(email)
	return nil
}

// Logout drops the cached session. A missing session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// CurrentSession returns the cached session for token, if any.
func (s *Service) CurrentSession(ctx context.Context, token string) (*Session, error) {
	return s.sessions.Get(ctx, token)
}

// cacheSession stores the session keyed by the issued token. The login
// itself already succeeded, so a store failure is only logged.
func (s *Service) cacheSession(ctx context.Context, resp *AuthResponse) {
	if resp == nil || resp.AccessToken == "" {
		return
	}
	session := &Session{
		Token:  resp.AccessToken,
		User:   resp.User,
		Tenant: resp.Tenant,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		logger.Warn("缓存登录会话失败", zap.Error(err), zap.String("email", resp.User.Email))
	}
}
