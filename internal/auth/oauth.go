package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

// oauthProvider is a configured OAuth2 identity provider.
type oauthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// WithOAuth enables OAuth sign in through the configured provider.
func (s *Service) WithOAuth(cfg model.OAuthConfig) *Service {
	if !cfg.Enabled() {
		s.oauth = nil
		return s
	}
	s.oauth = &oauthProvider{
		name: cfg.Provider,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}
	return s
}

// OAuthEnabled reports whether an OAuth provider is configured.
func (s *Service) OAuthEnabled() bool {
	return s.oauth != nil
}

// OAuthURL returns the provider consent page URL carrying state.
func (s *Service) OAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthDisabled
	}
	return s.oauth.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// userInfo is the subset of the provider's user-info response we need.
type userInfo struct {
	Email string `json:"email"`
}

// ExchangeCode trades an authorization code for a provider token, looks
// up the account by the provider's email (creating it on first sign in)
// and starts a session.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if s.oauth == nil {
		return nil, nil, ErrOAuthDisabled
	}
	if code == "" {
		return nil, nil, fmt.Errorf("%w: missing authorization code", store.ErrInvalid)
	}

	tok, err := s.oauth.config.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn(ctx, "oauth code exchange failed", zap.Error(err))
		return nil, nil, fmt.Errorf("exchanging code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, tok)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, info.Email)
	if errors.Is(err, store.ErrNotFound) {
		created, cerr := s.store.CreateUser(ctx, model.User{Email: info.Email, Provider: s.oauth.name})
		if cerr != nil {
			return nil, nil, cerr
		}
		s.logger.Info(ctx, "user created from oauth", zap.String("user_id", created.ID),
			zap.String("provider", s.oauth.name))
		user = &created
	} else if err != nil {
		return nil, nil, err
	}

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func (s *Service) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*userInfo, error) {
	client := s.oauth.config.Client(ctx, tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.oauth.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building user info request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("user info has no email")
	}
	return &info, nil
}
