package labelmgr

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/testutil"
	"github.com/nhle/too-doo/internal/ui"
)

func loadedManager(t *testing.T) (Model, *notes.Service, string) {
	t.Helper()
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	svc := notes.NewService(s, nil)

	for _, name := range []string{"Work", "Home", "Gym"} {
		_, err := svc.CreateLabel(ctx, u.ID, name, "")
		require.NoError(t, err)
	}
	_, err := svc.CreateNote(ctx, u.ID, notes.NewNote{Title: "loose"})
	require.NoError(t, err)

	m := New(ui.Services{Notes: svc, UserID: u.ID}, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.loadLabels()())
	return m, svc, u.ID
}

func names(m Model) []string {
	var out []string
	for _, l := range m.ordered() {
		out = append(out, l.Name)
	}
	return out
}

func TestModel_LoadsInPositionOrder(t *testing.T) {
	m, _, _ := loadedManager(t)
	assert.Equal(t, []string{"Work", "Home", "Gym"}, names(m))
	assert.Equal(t, 1, m.counts[""])
	assert.Contains(t, m.View(), "Uncategorized")
}

func TestModel_ReorderPersists(t *testing.T) {
	m, svc, userID := loadedManager(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'J'}})
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"Home", "Work", "Gym"}, names(m))
	assert.Equal(t, 1, m.selectedIdx)

	m, _ = m.Update(cmd())
	assert.False(t, m.order.Pending(orderKey))

	labels, err := svc.ListLabels(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Home", labels[0].Name)
	assert.Equal(t, "Work", labels[1].Name)
}

func TestModel_ReorderRollback(t *testing.T) {
	m, _, _ := loadedManager(t)
	before, _ := m.order.Value(orderKey)

	m, _ = m.move(1)
	assert.Equal(t, []string{"Home", "Work", "Gym"}, names(m))

	m, _ = m.Update(reorderedMsg{err: &notes.ReorderError{Kind: "label", Snapshot: before, Err: errors.New("boom")}})
	assert.Equal(t, []string{"Work", "Home", "Gym"}, names(m))
	assert.Contains(t, m.statusMsg, "order restored")
}

func TestModel_MoveAtEdge(t *testing.T) {
	m, _, _ := loadedManager(t)
	_, cmd := m.move(-1)
	assert.Nil(t, cmd)
}

func TestModel_BackCloses(t *testing.T) {
	m, _, _ := loadedManager(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
	assert.False(t, m.Editing())
}

func TestModel_SaveAndDelete(t *testing.T) {
	m, svc, userID := loadedManager(t)

	m.fb.name = "Errands"
	m.fb.color = "#FFB26F"
	msg := m.saveLabel()()
	saved, ok := msg.(labelSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	labels, err := svc.ListLabels(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, labels, 4)
	assert.Equal(t, "Errands", labels[3].Name)

	deleted := m.deleteLabel(labels[3])().(labelSavedMsg)
	require.NoError(t, deleted.err)
	labels, err = svc.ListLabels(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, labels, 3)
}
