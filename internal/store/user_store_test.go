package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
	"github.com/nhle/too-doo/internal/testutil"
)

func TestUsers(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.User{Email: "Ada@Example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "password", u.Provider)

	got, err := s.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.LastLoginAt)

	_, err = s.CreateUser(ctx, model.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.GetUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.TouchLogin(ctx, u.ID, time.Now()))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, ids)
}

func TestSessions(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateSession(ctx, model.Session{
		Token: "live", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, s.CreateSession(ctx, model.Session{
		Token: "stale", UserID: u.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))

	sess, err := s.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.False(t, sess.Expired(now))

	n, err := s.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteSession(ctx, "live"))
	require.NoError(t, s.DeleteSession(ctx, "live"))
	_, err = s.GetSession(ctx, "live")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPreferences(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	v, err := s.GetPreference(ctx, u.ID, model.PrefViewMode)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetPreference(ctx, u.ID, model.PrefViewMode, "label"))
	require.NoError(t, s.SetPreference(ctx, u.ID, model.PrefViewMode, "task"))

	v, err = s.GetPreference(ctx, u.ID, model.PrefViewMode)
	require.NoError(t, err)
	assert.Equal(t, "task", v)
}

func TestImportedMessages(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	seen, err := s.IsMessageImported(ctx, "<a@mail>")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkMessageImported(ctx, "<a@mail>", "note-1"))
	seen, err = s.IsMessageImported(ctx, "<a@mail>")
	require.NoError(t, err)
	assert.True(t, seen)

	err = s.MarkMessageImported(ctx, "<a@mail>", "note-2")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestStatsAndAggregates(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	_, err := s.GetUserStats(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.UpsertUserStats(ctx, model.UserStats{UserID: u.ID, CurrentStreak: 2, LongestStreak: 5}))
	require.NoError(t, s.UpsertUserStats(ctx, model.UserStats{UserID: u.ID, CurrentStreak: 3, LongestStreak: 5}))

	st, err := s.GetUserStats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 5, st.LongestStreak)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6).Add(24*time.Hour - time.Millisecond)
	agg := model.AnalyticsAggregate{UserID: u.ID, PeriodStart: start, PeriodEnd: end, CreatedCount: 4, CompletedCount: 1}
	require.NoError(t, s.UpsertAnalyticsAggregate(ctx, agg))
	agg.CompletedCount = 3
	require.NoError(t, s.UpsertAnalyticsAggregate(ctx, agg))

	aggs, err := s.ListAnalyticsAggregates(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, 4, aggs[0].CreatedCount)
	assert.Equal(t, 3, aggs[0].CompletedCount)
	assert.True(t, aggs[0].PeriodStart.Equal(start))
}
