package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/notes"
	jobs "github.com/nhle/too-doo/internal/sync"
	"github.com/nhle/too-doo/internal/testutil"
	"github.com/nhle/too-doo/internal/ui"
	"github.com/nhle/too-doo/internal/ui/command"
	"github.com/nhle/too-doo/internal/ui/detail"
	"github.com/nhle/too-doo/internal/ui/noteform"
	"github.com/nhle/too-doo/internal/ui/notelist"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newApp(t *testing.T) (Model, ui.Services) {
	t.Helper()
	s := testutil.NewTestStore(t)
	u := testutil.NewTestUser(t, s)
	svc := ui.Services{
		Notes:     notes.NewService(s, nil),
		Analytics: analytics.NewService(s, nil),
		UserID:    u.ID,
	}
	m := New(svc, u.Email, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), svc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestApp_TabNavigation(t *testing.T) {
	m, _ := newApp(t)
	assert.Equal(t, ViewActive, m.currentView)

	m, _ = update(t, m, runes("2"))
	assert.Equal(t, ViewCompleted, m.currentView)
	assert.Equal(t, 1, m.activeTab())

	m, cmd := update(t, m, runes("3"))
	assert.Equal(t, ViewAnalytics, m.currentView)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, runes("L"))
	assert.Equal(t, ViewLabels, m.currentView)

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Equal(t, 3, m.activeTab())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewLabels, m.currentView)

	assert.Contains(t, m.View(), "Too-Doo")
}

func TestApp_SettingsTab(t *testing.T) {
	m, _ := newApp(t)

	m, cmd := update(t, m, runes("S"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewSettings, m.currentView)
	assert.Equal(t, 4, m.activeTab())

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, ViewActive, m.currentView)
}

func TestApp_CreateNoteThroughForm(t *testing.T) {
	m, svc := newApp(t)

	m, cmd := update(t, m, runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewNoteForm, m.currentView)

	ready, ok := cmd().(formReadyMsg)
	require.True(t, ok)
	m, _ = update(t, m, ready)

	m, cmd = update(t, m, noteform.SubmittedMsg{Draft: noteform.Draft{Title: "Buy milk"}})
	assert.Equal(t, ViewActive, m.currentView)
	changed, ok := cmd().(ui.NoteChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "Created Buy milk", changed.Status)

	m, cmd = update(t, m, changed)
	assert.Equal(t, "Created Buy milk", m.status)
	require.NotNil(t, cmd)

	active, err := svc.Notes.ActiveNotes(context.Background(), svc.UserID, notes.ActiveQuery{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Buy milk", active[0].Title)
}

func TestApp_OpenDetailAndBack(t *testing.T) {
	m, svc := newApp(t)
	n, err := svc.Notes.CreateNote(context.Background(), svc.UserID, notes.NewNote{Title: "Read"})
	require.NoError(t, err)

	m, cmd := update(t, m, runes("2"))
	assert.Nil(t, cmd)
	m, cmd = update(t, m, notelist.SelectedNoteMsg{NoteID: n.ID})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewDetail, m.currentView)

	m, _ = update(t, m, cmd())
	assert.Equal(t, n.ID, m.detail.NoteID())

	m, _ = update(t, m, detail.BackMsg{})
	assert.Equal(t, ViewCompleted, m.currentView)
}

func TestApp_Commands(t *testing.T) {
	m, _ := newApp(t)

	m, _ = update(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.currentView)
	m, _ = update(t, m, runes("q"))
	assert.Equal(t, ViewCommand, m.currentView, "typing in the palette must not quit")

	m, cmd := update(t, m, command.CommandMsg("timeframe 1m"))
	assert.Equal(t, ViewAnalytics, m.currentView)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, command.CommandMsg("timeframe 2y"))
	assert.True(t, m.statusErr)

	m, _ = update(t, m, command.CommandMsg("bogus"))
	assert.Contains(t, m.status, "unknown command")
}

func TestApp_JobStatus(t *testing.T) {
	m, _ := newApp(t)
	assert.Equal(t, "offline jobs", m.jobStatus())

	m.poller = jobs.New(nil)
	assert.Equal(t, "no jobs", m.jobStatus())

	m.setJobStatus(jobs.JobResultMsg{Name: "mail", Report: jobs.Report{Items: 2, Detail: "2 notes captured"}})
	assert.Equal(t, "mail: 2 notes captured", m.status)
	assert.False(t, m.statusErr)
}
