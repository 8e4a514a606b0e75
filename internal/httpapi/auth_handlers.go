package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/model"
)

const (
	stateCookie    = "toodoo_oauth_state"
	redirectCookie = "toodoo_redirect_to"
)

// CredentialsRequest is the body of sign up and sign in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes a signed-in account.
type SessionResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

func (s *Server) handleSignUp(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, sess, err := s.auth.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	return c.JSON(http.StatusCreated, SessionResponse{User: user, Token: sess.Token, ExpiresAt: &sess.ExpiresAt})
}

func (s *Server) handleSignIn(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, sess, err := s.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	return c.JSON(http.StatusOK, SessionResponse{User: user, Token: sess.Token, ExpiresAt: &sess.ExpiresAt})
}

func (s *Server) handleSignOut(c echo.Context) error {
	if err := s.auth.SignOut(c.Request().Context(), s.sessionToken(c)); err != nil {
		return err
	}
	s.clearCookie(c, s.config.CookieName)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSession(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return auth.ErrNoSession
	}
	return c.JSON(http.StatusOK, SessionResponse{User: user})
}

// handleOAuthStart sends the browser to the provider's consent page.
func (s *Server) handleOAuthStart(c echo.Context) error {
	state, err := auth.NewToken()
	if err != nil {
		return err
	}
	target, err := s.auth.OAuthURL(state)
	if err != nil {
		return err
	}
	s.setShortCookie(c, stateCookie, state)
	if to := c.QueryParam("redirectTo"); to != "" {
		s.setShortCookie(c, redirectCookie, auth.SafeRedirect(to))
	}
	return c.Redirect(http.StatusFound, target)
}

// handleOAuthCallback exchanges the authorization code for a session and
// returns the browser to the page it originally asked for.
func (s *Server) handleOAuthCallback(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusSeeOther, "/auth")
	}

	if cookie, err := c.Cookie(stateCookie); err != nil || cookie.Value != c.QueryParam("state") {
		s.logger.Warn(ctx, "oauth state mismatch")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid oauth state")
	}
	s.clearCookie(c, stateCookie)

	_, sess, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn(ctx, "oauth callback failed", zap.Error(err))
		return err
	}
	s.setSessionCookie(c, sess)

	target := c.QueryParam("redirectTo")
	if cookie, err := c.Cookie(redirectCookie); err == nil && target == "" {
		target = cookie.Value
	}
	s.clearCookie(c, redirectCookie)
	return c.Redirect(http.StatusSeeOther, auth.SafeRedirect(target))
}

func (s *Server) setSessionCookie(c echo.Context, sess *model.Session) {
	c.SetCookie(&http.Cookie{
		Name:     s.config.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setShortCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
