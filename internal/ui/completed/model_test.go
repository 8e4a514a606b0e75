package completed

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/testutil"
	"github.com/nhle/too-doo/internal/ui"
)

func TestModel_FansOutGroupsAndReverts(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	svc := notes.NewService(s, nil)

	work, err := svc.CreateLabel(ctx, u.ID, "Work", "")
	require.NoError(t, err)
	_, err = svc.CreateLabel(ctx, u.ID, "Home", "")
	require.NoError(t, err)
	report, err := svc.CreateNote(ctx, u.ID, notes.NewNote{Title: "report", LabelID: &work.ID})
	require.NoError(t, err)
	_, err = svc.CompleteNote(ctx, u.ID, report.ID)
	require.NoError(t, err)

	m := New(ui.Services{Notes: svc, UserID: u.ID}, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.Load()())

	require.Len(t, m.groups, 3)
	assert.Equal(t, "Work", m.groups[0].Name)
	assert.Len(t, m.groups[0].Notes, 1)
	assert.Equal(t, "Home", m.groups[1].Name)
	assert.Equal(t, notes.GroupUnmarked, m.groups[2].Name)
	assert.Equal(t, "Completed (1)", m.list.Title)

	m.list.Select(1)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NoteChangedMsg{Status: "Reverted report"}, cmd())

	n, err := svc.GetNote(ctx, u.ID, report.ID)
	require.NoError(t, err)
	assert.False(t, n.IsCompleted)
	assert.Nil(t, n.CompletedAt)
}

func TestModel_HeaderRowsAreInert(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	svc := notes.NewService(s, nil)

	m := New(ui.Services{Notes: svc, UserID: u.ID}, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.Load()())
	require.Len(t, m.groups, 1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		_, isSelect := cmd().(SelectedNoteMsg)
		assert.False(t, isSelect)
	}
}
