package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
	"github.com/nhle/too-doo/internal/testutil"
)

func TestCreateLabel(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	a, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: " Work "})
	require.NoError(t, err)
	assert.Equal(t, "Work", a.Name)
	assert.Equal(t, model.DefaultLabelColor, a.Color)
	assert.Equal(t, 1, a.Position)

	b, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Home"})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Position)

	_, err = s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Work"})
	assert.ErrorIs(t, err, store.ErrConflict)

	// Names are unique per user only.
	other := testutil.NewTestUser(t, s)
	_, err = s.CreateLabel(ctx, model.Label{UserID: other.ID, Name: "Work"})
	assert.NoError(t, err)
}

func TestListLabels_Ordering(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	zeta, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Zeta"})
	require.NoError(t, err)
	alpha, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Alpha"})
	require.NoError(t, err)

	byName, err := s.ListLabels(ctx, u.ID, false)
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, alpha.ID, byName[0].ID)

	byPos, err := s.ListLabels(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, zeta.ID, byPos[0].ID)

	require.NoError(t, s.SetLabelPosition(ctx, u.ID, zeta.ID, 10))
	byPos, err = s.ListLabels(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, byPos[0].ID)
}

func TestDeleteLabel_UnlabelsNotes(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	label, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Temp"})
	require.NoError(t, err)
	n, err := s.CreateNote(ctx, model.Note{UserID: u.ID, Title: "keep me", LabelID: &label.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLabel(ctx, u.ID, label.ID))

	got, err := s.GetNote(ctx, u.ID, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LabelID)
	assert.Nil(t, got.Label)

	err = s.DeleteLabel(ctx, u.ID, label.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTaskCountsByLabel(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	ctx := context.Background()

	label, err := s.CreateLabel(ctx, model.Label{UserID: u.ID, Name: "Work"})
	require.NoError(t, err)
	for _, done := range []bool{false, false, true} {
		_, err := s.CreateNote(ctx, model.Note{UserID: u.ID, Title: "w", LabelID: &label.ID, IsCompleted: done})
		require.NoError(t, err)
	}
	_, err = s.CreateNote(ctx, model.Note{UserID: u.ID, Title: "loose"})
	require.NoError(t, err)

	toMap := func(counts []model.LabelCount) map[string]int {
		m := map[string]int{}
		for _, c := range counts {
			key := ""
			if c.LabelID != nil {
				key = *c.LabelID
			}
			m[key] = c.Count
		}
		return m
	}

	active, err := s.ActiveTaskCountsByLabel(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{label.ID: 2, "": 1}, toMap(active))

	all, err := s.AllTaskCountsByLabel(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{label.ID: 3, "": 1}, toMap(all))
}
