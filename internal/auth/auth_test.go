package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
	"github.com/nhle/too-doo/internal/testutil"
)

func newAuth(t *testing.T) (*auth.Service, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	return auth.NewService(s, logging.NewNop(), time.Hour), s
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, auth.CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, auth.CheckPassword("", "secret1"), auth.ErrInvalidCredentials)

	_, err = auth.HashPassword("short")
	assert.Error(t, err)
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, s := newAuth(t)
	ctx := context.Background()

	user, sess, err := svc.SignUp(ctx, "Ada@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, user.ID, sess.UserID)
	assert.NotEmpty(t, sess.Token)

	_, _, err = svc.SignUp(ctx, "ada@example.com", "another1")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, _, err = svc.SignIn(ctx, "ada@example.com", "nope-nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = svc.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	signedIn, sess2, err := svc.SignIn(ctx, "ADA@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)
	assert.NotEqual(t, sess.Token, sess2.Token)

	stored, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	current, err := svc.CurrentUser(ctx, sess2.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, svc.SignOut(ctx, sess2.Token))
	_, err = svc.CurrentUser(ctx, sess2.Token)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestSession_Expiry(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	_, sess, err := svc.SignUp(ctx, "exp@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Session(ctx, sess.Token)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Session(ctx, sess.Token)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	n, err := svc.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "expired session was already removed on lookup")

	_, err = svc.Session(ctx, "")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestOAuth_Disabled(t *testing.T) {
	svc, _ := newAuth(t)
	assert.False(t, svc.OAuthEnabled())
	_, err := svc.OAuthURL("state")
	assert.ErrorIs(t, err, auth.ErrOAuthDisabled)
	_, _, err = svc.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, auth.ErrOAuthDisabled)
}

func TestOAuth_ExchangeCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"oauth@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc, s := newAuth(t)
	svc.WithOAuth(model.OAuthConfig{
		Provider:    "github",
		ClientID:    "client",
		AuthURL:     srv.URL + "/authorize",
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
		RedirectURL: "http://localhost/auth/callback",
		Scopes:      []string{"email"},
	})
	require.True(t, svc.OAuthEnabled())

	consent, err := svc.OAuthURL("xyz")
	require.NoError(t, err)
	u, err := url.Parse(consent)
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))

	ctx := context.Background()
	user, sess, err := svc.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "oauth@example.com", user.Email)
	assert.Equal(t, "github", user.Provider)
	assert.Equal(t, user.ID, sess.UserID)

	again, _, err := svc.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "second sign in reuses the account")

	_, _, err = svc.ExchangeCode(ctx, "bad-code")
	assert.Error(t, err)

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSessionPruner(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	_, _, err := svc.SignUp(ctx, "prune@example.com", "hunter22")
	require.NoError(t, err)
	_, _, err = svc.SignIn(ctx, "prune@example.com", "hunter22")
	require.NoError(t, err)

	job := auth.NewSessionPruner(svc)
	assert.Equal(t, "sessions", job.Name())

	report, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Items)

	now = now.Add(2 * time.Hour)
	report, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)
}
