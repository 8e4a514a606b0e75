package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	jobs "github.com/nhle/too-doo/internal/sync"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
	analyticsview "github.com/nhle/too-doo/internal/ui/analytics"
	"github.com/nhle/too-doo/internal/ui/command"
	"github.com/nhle/too-doo/internal/ui/completed"
	"github.com/nhle/too-doo/internal/ui/detail"
	helpview "github.com/nhle/too-doo/internal/ui/help"
	"github.com/nhle/too-doo/internal/ui/labelmgr"
	"github.com/nhle/too-doo/internal/ui/noteform"
	"github.com/nhle/too-doo/internal/ui/notelist"
	"github.com/nhle/too-doo/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewActive ViewState = iota
	ViewCompleted
	ViewAnalytics
	ViewLabels
	ViewSettings
	ViewDetail
	ViewHelp
	ViewCommand
	ViewNoteForm
)

// tabs are the views reachable from the tab row, in ViewState order.
var tabs = []string{"1 Active", "2 Completed", "3 Analytics", "L Labels", "S Settings"}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the background job status.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          ui.Services
	userEmail    string
	keys         *keys.KeyMap
	poller       *jobs.Poller
	noteList     notelist.Model
	completed    completed.Model
	analytics    analyticsview.Model
	detail       detail.Model
	labels       labelmgr.Model
	settings     settings.Model
	helpView     helpview.Model
	commandView  command.Model
	noteForm     noteform.Model
	status       string
	statusErr    bool
	ready        bool
}

// New creates the root model for the signed in user. poller may be nil
// when no background jobs are configured.
func New(svc ui.Services, userEmail string, poller *jobs.Poller) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewActive,
		svc:         svc,
		userEmail:   userEmail,
		keys:        k,
		poller:      poller,
		noteList:    notelist.New(svc, k, 80, 24),
		completed:   completed.New(svc, k, 80, 24),
		analytics:   analyticsview.New(svc, k, 80, 24),
		detail:      detail.New(svc, k, 80, 24),
		labels:      labelmgr.New(svc, k, 80, 24),
		settings:    settings.New(svc, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		noteForm:    noteform.New(80, 24),
	}
}

// Init loads every view and starts the background jobs.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.noteList.Init(),
		m.completed.Init(),
		m.analytics.Init(),
	}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.noteList.SetSize(w, h)
		m.completed.SetSize(w, h)
		m.analytics.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.labels.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.noteForm.SetSize(w, h)
		return m, nil

	case jobs.JobResultMsg:
		m.setJobStatus(msg)
		cmds := []tea.Cmd{m.poller.WaitForNextResult()}
		if msg.Error == nil && msg.Report.Items > 0 {
			cmds = append(cmds, m.reloadAll())
		}
		return m, tea.Batch(cmds...)

	case ui.NoteChangedMsg:
		m.setStatus(msg.Status, false)
		return m, m.reloadAll()

	case ui.LabelsChangedMsg:
		return m, tea.Batch(m.noteList.Load(), m.completed.Load(), m.analytics.Load())

	case ui.ErrMsg:
		m.setStatus(msg.Err.Error(), true)
		return m, nil

	case ui.StatusMsg:
		m.setStatus(string(msg), false)
		return m, nil

	case notelist.SelectedNoteMsg:
		return m, m.openDetail(msg.NoteID)

	case completed.SelectedNoteMsg:
		return m, m.openDetail(msg.NoteID)

	case detail.BackMsg:
		m.currentView = m.previousView
		return m, nil

	case ui.EditNoteMsg:
		n := msg.Note
		return m, m.openForm(&n)

	case formReadyMsg:
		m.noteForm.SetLabels(msg.labels)
		if msg.edit != nil {
			return m, m.noteForm.StartEdit(*msg.edit)
		}
		return m, m.noteForm.StartCreate(msg.labelID)

	case noteform.SubmittedMsg:
		m.currentView = m.previousView
		return m, m.saveNote(msg)

	case noteform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case labelmgr.CloseMsg, settings.CloseMsg:
		m.currentView = ViewActive
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if !m.statusErr {
			m.status = ""
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
		return m.updateActiveView(msg)
	}

	return m.broadcast(msg)
}

// capturingInput reports whether the active view owns every keystroke.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewNoteForm, ViewCommand:
		return true
	case ViewLabels:
		return m.labels.Editing()
	case ViewSettings:
		return m.settings.Editing()
	case ViewActive:
		return m.noteList.Searching()
	}
	return false
}

// handleGlobalKey processes keys that work across views.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, m.quit(), true
	}
	if m.capturingInput() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView <= ViewSettings {
			return m, m.quit(), true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Back) && (m.currentView == ViewHelp):
		m.currentView = m.previousView
		return m, nil, true

	case key.Matches(msg, m.keys.ViewActive):
		m.currentView = ViewActive
		return m, nil, true

	case key.Matches(msg, m.keys.ViewCompleted):
		m.currentView = ViewCompleted
		return m, nil, true

	case key.Matches(msg, m.keys.ViewAnalytics):
		m.currentView = ViewAnalytics
		return m, m.analytics.Load(), true

	case key.Matches(msg, m.keys.Labels):
		m.currentView = ViewLabels
		return m, m.labels.Init(), true

	case key.Matches(msg, m.keys.Settings):
		m.currentView = ViewSettings
		return m, m.settings.Init(), true

	case key.Matches(msg, m.keys.New):
		if m.currentView == ViewActive || m.currentView == ViewCompleted {
			return m, m.openForm(nil), true
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(), true
	}
	return m, nil, false
}

// updateActiveView sends a key message to the active view only.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewActive:
		m.noteList, cmd = m.noteList.Update(msg)
	case ViewCompleted:
		m.completed, cmd = m.completed.Update(msg)
	case ViewAnalytics:
		m.analytics, cmd = m.analytics.Update(msg)
	case ViewLabels:
		m.labels, cmd = m.labels.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewNoteForm:
		m.noteForm, cmd = m.noteForm.Update(msg)
	}
	return m, cmd
}

// broadcast delivers a non-key message to every view so results of
// background commands land even after the user navigated away. Input
// views only receive it while active.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 7)
	var cmd tea.Cmd

	m.noteList, cmd = m.noteList.Update(msg)
	cmds = append(cmds, cmd)
	m.completed, cmd = m.completed.Update(msg)
	cmds = append(cmds, cmd)
	m.analytics, cmd = m.analytics.Update(msg)
	cmds = append(cmds, cmd)
	m.detail, cmd = m.detail.Update(msg)
	cmds = append(cmds, cmd)
	m.labels, cmd = m.labels.Update(msg)
	cmds = append(cmds, cmd)
	m.settings, cmd = m.settings.Update(msg)
	cmds = append(cmds, cmd)

	switch m.currentView {
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewNoteForm:
		m.noteForm, cmd = m.noteForm.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) openDetail(noteID string) tea.Cmd {
	if m.currentView != ViewDetail {
		m.previousView = m.currentView
	}
	m.currentView = ViewDetail
	return m.detail.Load(noteID)
}

func (m *Model) openForm(edit *model.Note) tea.Cmd {
	if m.currentView != ViewNoteForm {
		m.previousView = m.currentView
	}
	m.currentView = ViewNoteForm
	return m.loadFormLabels(edit)
}

func (m Model) quit() tea.Cmd {
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setJobStatus(msg jobs.JobResultMsg) {
	switch {
	case msg.Error != nil:
		m.setStatus(fmt.Sprintf("%s: %v", msg.Name, msg.Error), true)
	case msg.Report.Items > 0:
		m.setStatus(fmt.Sprintf("%s: %s", msg.Name, msg.Report.Detail), false)
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Too-Doo"
	if m.userEmail != "" {
		title += " · " + m.userEmail
	}
	header := m.layout.RenderHeader(title, m.jobStatus())
	tabRow := m.layout.RenderTabs(tabs, m.activeTab())
	return m.layout.RenderWithFrame(header, tabRow, m.renderContent(), m.layout.RenderStatusBar(m.statusLine()))
}

// activeTab maps the current view onto the tab row.
func (m Model) activeTab() int {
	v := m.currentView
	if v > ViewSettings {
		v = m.previousView
	}
	if v > ViewSettings {
		return 0
	}
	return int(v)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewActive:
		return m.noteList.View()
	case ViewCompleted:
		return m.completed.View()
	case ViewAnalytics:
		return m.analytics.View()
	case ViewLabels:
		return m.labels.View()
	case ViewSettings:
		return m.settings.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewNoteForm:
		return m.noteForm.View()
	default:
		return ""
	}
}

// jobStatus summarizes the background jobs for the header.
func (m Model) jobStatus() string {
	if m.poller == nil {
		return "offline jobs"
	}
	statuses := m.poller.Statuses()
	if len(statuses) == 0 {
		return "no jobs"
	}

	var running, failed []string
	for _, s := range statuses {
		switch s.State {
		case jobs.JobRunning:
			running = append(running, s.Name)
		case jobs.JobError:
			failed = append(failed, s.Name)
		}
	}
	if len(running) > 0 {
		return "running: " + strings.Join(running, ", ")
	}
	if len(failed) > 0 {
		return "failed: " + strings.Join(failed, ", ")
	}
	return "idle"
}

// statusLine returns the last status message, or keyboard hints.
func (m Model) statusLine() string {
	if m.status != "" {
		if m.statusErr {
			return theme.ErrorStyle.Render("error: " + m.status)
		}
		return m.status
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | j/k items | space check | e edit | x complete"
	case ViewNoteForm:
		return "enter submit | esc cancel"
	case ViewLabels:
		return "n new | e edit | d delete | K/J move | esc back"
	case ViewSettings:
		return "j/k move | enter change | esc back"
	case ViewAnalytics:
		return "t timeframe | tab active/all | q quit"
	case ViewCompleted:
		return "enter open | x revert | d delete | q quit"
	default:
		hint := "q quit | ? help | n new | / search | v view | tab label | s sort"
		if m.noteList.Mode() == model.ViewModeLabel {
			hint += " | K/J move"
		}
		return hint
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	m.setStatus("", false)
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "refresh", "sync":
		return m.refresh()
	case "quit", "q":
		return m.quit()
	case "new":
		return m.openForm(nil)
	case "active":
		m.currentView = ViewActive
	case "completed":
		m.currentView = ViewCompleted
	case "analytics":
		m.currentView = ViewAnalytics
		return m.analytics.Load()
	case "labels":
		m.currentView = ViewLabels
		return m.labels.Init()
	case "settings":
		m.currentView = ViewSettings
		return m.settings.Init()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
	case "view":
		if len(fields) == 2 {
			return m.setViewMode(model.ParseViewMode(fields[1]))
		}
	case "timeframe":
		if len(fields) == 2 {
			tf, err := analytics.ParseTimeframe(fields[1])
			if err != nil {
				m.setStatus(err.Error(), true)
				return nil
			}
			m.currentView = ViewAnalytics
			return m.analytics.SetTimeframe(tf)
		}
	default:
		m.setStatus(fmt.Sprintf("unknown command %q", cmd), true)
	}
	return nil
}
