package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/testutil"
)

func setupTestServer(t *testing.T, rl model.RateLimitConfig) *Server {
	t.Helper()
	st := testutil.NewTestStore(t)
	logger := logging.NewNop()

	server, err := NewServer(
		notes.NewService(st, logger),
		analytics.NewService(st, logger),
		auth.NewService(st, logger, 0),
		logger,
		model.ServerConfig{Host: "localhost", Port: 8080, CookieName: "sid", RateLimit: rl},
	)
	require.NoError(t, err)
	return server
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", CredentialsRequest{Email: email, Password: "hunter22"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer(t *testing.T) {
	t.Run("returns error when logger is nil", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		_, err := NewServer(notes.NewService(st, nil), analytics.NewService(st, nil),
			auth.NewService(st, nil, 0), nil, model.ServerConfig{})
		assert.ErrorContains(t, err, "logger is required")
	})

	t.Run("returns error when a service is missing", func(t *testing.T) {
		_, err := NewServer(nil, nil, nil, logging.NewNop(), model.ServerConfig{})
		assert.Error(t, err)
	})
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{})
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouteGuard(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{})

	rec := do(t, s, http.MethodGet, "/analytics", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth?redirectTo=%2Fanalytics", rec.Header().Get("Location"))

	rec = do(t, s, http.MethodGet, "/api/v1/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := signUp(t, s, "guard@example.com")
	rec = do(t, s, http.MethodGet, "/analytics?timeframe=1m", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dash := decode[DashboardResponse](t, rec)
	assert.Equal(t, analytics.TimeframeMonth, dash.Activity.Timeframe)
	assert.Len(t, dash.Activity.Points, 5)

	rec = do(t, s, http.MethodGet, "/settings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ViewModeTask, decode[SettingsResponse](t, rec).ViewMode)
}

func TestAuthEndpoints(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{RPS: 100, Burst: 100})
	token := signUp(t, s, "auth@example.com")

	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", CredentialsRequest{Email: "auth@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/signup", "", CredentialsRequest{Email: "short@example.com", Password: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/signin", "", CredentialsRequest{Email: "auth@example.com", Password: "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/signin", "", CredentialsRequest{Email: "auth@example.com", Password: "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie set")

	rec = do(t, s, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth@example.com", decode[SessionResponse](t, rec).User.Email)

	rec = do(t, s, http.MethodPost, "/api/auth/signout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/auth/oauth", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = do(t, s, http.MethodGet, "/auth/callback", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestRateLimit(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{RPS: 0.001, Burst: 2})
	body := CredentialsRequest{Email: "nobody@example.com", Password: "hunter22"}

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/api/auth/signin", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/api/auth/signin", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodPost, "/api/auth/signin", "", body).Code)

	// Non-auth routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "", nil).Code)
}

func TestNoteEndpoints(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{})
	token := signUp(t, s, "notes@example.com")

	rec := do(t, s, http.MethodPost, "/api/v1/notes", token, notes.NewNote{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/notes", token, notes.NewNote{
		Title:  "Groceries",
		IsList: true,
		Items:  []model.ListItem{{Text: "milk"}, {Text: "eggs"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	list := decode[model.Note](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/notes", token, notes.NewNote{Title: "Call mom"})
	require.Equal(t, http.StatusCreated, rec.Code)
	call := decode[model.Note](t, rec)

	rec = do(t, s, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Note](t, rec), 2)

	rec = do(t, s, http.MethodPost, "/api/v1/notes/"+list.ID+"/items/0/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[notes.ToggleResult](t, rec).AutoCompleted)

	rec = do(t, s, http.MethodPost, "/api/v1/notes/"+list.ID+"/items/1/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[notes.ToggleResult](t, rec)
	assert.True(t, toggled.AutoCompleted)
	assert.True(t, toggled.Note.IsCompleted)

	rec = do(t, s, http.MethodPost, "/api/v1/notes/"+list.ID+"/items/7/toggle", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/notes/"+call.ID+"/items/0/toggle", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/notes?view=completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decode[[]model.Note](t, rec)
	require.Len(t, completed, 1)
	assert.Equal(t, list.ID, completed[0].ID)

	rec = do(t, s, http.MethodPatch, "/api/v1/notes/"+call.ID, token, map[string]any{"title": "Call dad", "is_priority": true})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[model.Note](t, rec)
	assert.Equal(t, "Call dad", patched.Title)
	assert.True(t, patched.IsPriority)

	rec = do(t, s, http.MethodPost, "/api/v1/notes/"+list.ID+"/revert", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[model.Note](t, rec).CompletedAt)

	rec = do(t, s, http.MethodGet, "/api/v1/notes/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/notes/reorder", token, ReorderRequest{IDs: []string{call.ID}, From: 0, To: 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/notes/"+call.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/v1/notes/"+call.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	other := signUp(t, s, "other@example.com")
	rec = do(t, s, http.MethodGet, "/api/v1/notes/"+list.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "notes are scoped to their owner")
}

func TestLabelEndpoints(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{})
	token := signUp(t, s, "labels@example.com")

	rec := do(t, s, http.MethodPost, "/api/v1/labels", token, LabelRequest{Name: "Work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	work := decode[model.Label](t, rec)
	rec = do(t, s, http.MethodPost, "/api/v1/labels", token, LabelRequest{Name: "Home", Color: "#ef4444"})
	require.Equal(t, http.StatusCreated, rec.Code)
	home := decode[model.Label](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/labels", token, LabelRequest{Name: "Work"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/notes", token, notes.NewNote{Title: "Ship it", LabelID: &work.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decode[model.Note](t, rec)
	require.NotNil(t, note.Label)
	assert.Equal(t, "Work", note.Label.Name)

	rec = do(t, s, http.MethodPost, "/api/v1/labels/reorder", token, ReorderRequest{IDs: []string{work.ID, home.ID}, From: 1, To: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{home.ID, work.ID}, decode[ReorderResponse](t, rec).IDs)

	rec = do(t, s, http.MethodGet, "/api/v1/labels", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	labels := decode[[]model.Label](t, rec)
	require.Len(t, labels, 2)
	assert.Equal(t, "Home", labels[0].Name)

	rec = do(t, s, http.MethodGet, "/api/v1/labels/counts?scope=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/v1/labels/counts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.LabelCount](t, rec), 1)

	rec = do(t, s, http.MethodPatch, "/api/v1/notes/"+note.ID, token, map[string]any{"label_id": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[model.Note](t, rec).LabelID)

	rec = do(t, s, http.MethodDelete, "/api/v1/labels/"+work.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/analytics/focus?scope=all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	focus := decode[analytics.Focus](t, rec)
	assert.Equal(t, 1, focus.Total)
	assert.Equal(t, "Unmarked", focus.Slices[0].Name)
}

func TestPreferenceAndAnalyticsEndpoints(t *testing.T) {
	s := setupTestServer(t, model.RateLimitConfig{})
	token := signUp(t, s, "prefs@example.com")

	rec := do(t, s, http.MethodGet, "/api/v1/preferences/view-mode", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ViewModeTask, decode[ViewModeRequest](t, rec).Mode)

	rec = do(t, s, http.MethodPut, "/api/v1/preferences/view-mode", token, ViewModeRequest{Mode: "grid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/preferences/view-mode", token, ViewModeRequest{Mode: model.ViewModeLabel})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/v1/preferences/view-mode", token, nil)
	assert.Equal(t, model.ViewModeLabel, decode[ViewModeRequest](t, rec).Mode)

	rec = do(t, s, http.MethodGet, "/api/v1/analytics/activity?timeframe=2y", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/analytics/activity?timeframe=3m", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ActivityResponse](t, rec).Points, 6)

	rec = do(t, s, http.MethodGet, "/api/v1/analytics/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analytics.Stats{}, decode[analytics.Stats](t, rec))

	rec = do(t, s, http.MethodGet, "/api/v1/analytics/weekly", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.AnalyticsAggregate](t, rec))

	rec = do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toodoo_http_requests_total")
}
