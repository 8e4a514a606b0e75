package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoSession is returned when a token is missing, unknown or expired.
	ErrNoSession = errors.New("no active session")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOAuthDisabled is returned when no OAuth provider is configured.
	ErrOAuthDisabled = errors.New("oauth sign in is not configured")
)

// DefaultSessionTTL is used when the configured TTL is not positive.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service manages accounts and sessions.
type Service struct {
	store  store.Store
	logger *logging.Logger
	ttl    time.Duration
	oauth  *oauthProvider
	now    func() time.Time
}

// NewService creates an auth service issuing sessions valid for ttl.
func NewService(s store.Store, logger *logging.Logger, ttl time.Duration) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		store:  s,
		logger: logger.Named("auth"),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SignUp creates a password account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: invalid email address %q", store.ErrInvalid, email)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.store.CreateUser(ctx, model.User{Email: email, PasswordHash: hash, Provider: "password"})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, err
	}
	s.logger.Info(ctx, "user signed up", zap.String("user_id", user.ID))

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, sess, nil
}

// SignIn verifies a password and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.Warn(ctx, "sign in rejected", zap.String("user_id", user.ID))
		return nil, nil, err
	}

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// SignOut ends a session.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// Session resolves a token to a live session. Expired sessions are removed.
func (s *Service) Session(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			s.logger.Warn(ctx, "removing expired session failed", zap.Error(err))
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// CurrentUser returns the account behind a session token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	sess, err := s.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return user, nil
}

// PruneSessions deletes expired sessions and returns how many were removed.
func (s *Service) PruneSessions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

// startSession issues a new session token and records the login.
func (s *Service) startSession(ctx context.Context, userID string) (*model.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.TouchLogin(ctx, userID, now); err != nil {
		s.logger.Warn(ctx, "recording login failed", zap.String("user_id", userID), zap.Error(err))
	}
	return &sess, nil
}

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
