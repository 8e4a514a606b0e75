package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries the loaded note.
type DetailLoadedMsg struct {
	Note *model.Note
	Err  error
}

// toggledMsg carries the result of a checklist toggle.
type toggledMsg struct {
	result *notes.ToggleResult
	err    error
}

// Model is the note detail view. Checklist notes get a cursor over
// their items; space checks or unchecks the focused item.
type Model struct {
	note     *model.Note
	items    []model.ListItem
	cursor   int
	viewport viewport.Model
	svc      ui.Services
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		svc:      svc,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Load returns a command fetching the note and marks the view loading.
func (m *Model) Load(noteID string) tea.Cmd {
	m.loading = true
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.Notes.GetNote(context.Background(), svc.UserID, noteID)
		return DetailLoadedMsg{Note: n, Err: err}
	}
}

// NoteID returns the id of the displayed note, or "".
func (m Model) NoteID() string {
	if m.note == nil {
		return ""
	}
	return m.note.ID
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ErrMsg{Err: msg.Err} }
		}
		m.setNote(msg.Note)
		m.viewport.GotoTop()
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return ui.ErrMsg{Err: msg.err} }
		}
		m.setNote(msg.result.Note)
		status := "Item updated"
		switch {
		case msg.result.AutoCompleted:
			status = "All items done, note completed"
		case msg.result.AutoReverted:
			status = "Note moved back to active"
		}
		return m, func() tea.Msg { return ui.NoteChangedMsg{Status: status} }

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}
	if m.note == nil {
		return m, nil
	}
	n := *m.note

	switch {
	case key.Matches(msg, m.keys.Down) && len(m.items) > 0:
		m.cursor = min(m.cursor+1, len(m.items)-1)
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case key.Matches(msg, m.keys.Up) && len(m.items) > 0:
		m.cursor = max(m.cursor-1, 0)
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case key.Matches(msg, m.keys.ToggleItem) && len(m.items) > 0:
		svc, index := m.svc, m.cursor
		return m, func() tea.Msg {
			res, err := svc.Notes.ToggleListItem(context.Background(), svc.UserID, n.ID, index)
			return toggledMsg{result: res, err: err}
		}

	case key.Matches(msg, m.keys.Edit):
		return m, func() tea.Msg { return ui.EditNoteMsg{Note: n} }

	case key.Matches(msg, m.keys.Complete):
		fn, status := m.svc.Notes.CompleteNote, "Completed "+n.Title
		if n.IsCompleted {
			fn, status = m.svc.Notes.RevertNote, "Reverted "+n.Title
		}
		return m, m.mutate(fn, n.ID, status)

	case key.Matches(msg, m.keys.Priority):
		return m, m.mutate(m.svc.Notes.TogglePriority, n.ID, "Priority toggled")
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// mutate runs fn and reloads the note afterwards.
func (m Model) mutate(
	fn func(ctx context.Context, userID, id string) (*model.Note, error),
	id, status string,
) tea.Cmd {
	userID := m.svc.UserID
	return tea.Sequence(
		func() tea.Msg {
			if _, err := fn(context.Background(), userID, id); err != nil {
				return ui.ErrMsg{Err: err}
			}
			return ui.NoteChangedMsg{Status: status}
		},
		m.reload(id),
	)
}

func (m Model) reload(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.Notes.GetNote(context.Background(), svc.UserID, id)
		return DetailLoadedMsg{Note: n, Err: err}
	}
}

func (m *Model) setNote(n *model.Note) {
	m.note = n
	m.items = nil
	if n != nil && n.IsList {
		items, err := notes.ParseListItems(n.Description)
		if err == nil {
			m.items = items
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	m.viewport.SetContent(m.renderContent())
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading note...")
	}
	if m.note == nil {
		return placeholder.Render("No note selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.note == nil {
		return ""
	}
	n := m.note
	now := time.Now()
	var sections []string

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(n.Title)
	if n.IsPriority {
		title = theme.PriorityStyle.Render("! ") + title
	}
	sections = append(sections, title)

	var meta []string
	if n.Label != nil {
		meta = append(meta, theme.LabelStyle(n.Label).Render("#"+n.Label.Name))
	}
	if n.DueDate != nil {
		meta = append(meta, theme.DueDateStyle.Render("due "+ui.DueLabel(*n.DueDate, now)))
	}
	if n.IsCompleted && n.CompletedAt != nil {
		meta = append(meta, theme.HelpStyle.Render("completed "+ui.RelativeTime(*n.CompletedAt, now)))
	}
	meta = append(meta, theme.HelpStyle.Render("created "+ui.RelativeTime(n.CreatedAt, now)))
	sections = append(sections, strings.Join(meta, "  "))

	if n.IsList {
		done, total := notes.Progress(m.items)
		sections = append(sections, theme.HelpStyle.Render(fmt.Sprintf("%d of %d done", done, total)))
		for i, it := range m.items {
			box := "[ ]"
			text := it.Text
			if it.IsCompleted {
				box = "[x]"
				text = theme.DimmedStyle.Render(text)
			}
			line := box + " " + text
			if i == m.cursor {
				line = theme.SelectedItemStyle.Render(line)
			} else {
				line = theme.ListItemStyle.Render(line)
			}
			sections = append(sections, line)
		}
	} else if strings.TrimSpace(n.Description) != "" {
		sections = append(sections, lipgloss.NewStyle().Width(max(m.width-4, 10)).Render(n.Description))
	}

	sections = append(sections, theme.HelpStyle.Render("esc back · e edit · x complete · p priority"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
