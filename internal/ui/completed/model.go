package completed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// GroupsLoadedMsg carries the completed notes grouped by label.
type GroupsLoadedMsg struct {
	Groups []notes.Group
	Err    error
}

// SelectedNoteMsg is sent when the user opens a completed note.
type SelectedNoteMsg struct {
	NoteID string
}

type row struct {
	group *notes.Group
	note  *model.Note
}

func (r row) FilterValue() string {
	if r.note != nil {
		return r.note.Title
	}
	return r.group.Name
}

type delegate struct {
	now func() time.Time
}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	if r.group != nil {
		style := theme.ColorStyle(r.group.Color).Bold(true)
		if r.group.Color == "" {
			style = theme.LabelStyle(nil)
		}
		text := fmt.Sprintf("● %s (%d)", r.group.Name, len(r.group.Notes))
		if len(r.group.Notes) == 0 {
			text += theme.HelpStyle.Render(" nothing completed yet")
		}
		fmt.Fprint(w, style.Render(text))
		return
	}

	line := theme.DimmedStyle.Render(r.note.Title)
	if r.note.CompletedAt != nil {
		line += theme.HelpStyle.Render("  " + ui.RelativeTime(*r.note.CompletedAt, d.now()))
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// Model is the Completed view: every label fanned out as a group, each
// listing its completed notes newest first.
type Model struct {
	list   list.Model
	svc    ui.Services
	keys   *keys.KeyMap
	groups []notes.Group
	width  int
	height int
}

// New creates the Completed view.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, delegate{now: time.Now}, width, height-2)
	l.Title = "Completed"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{list: l, svc: svc, keys: k, width: width, height: height}
}

// Init loads the groups.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command fetching the fanned groups.
func (m Model) Load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		groups, err := svc.Notes.FannedGroups(context.Background(), svc.UserID)
		return GroupsLoadedMsg{Groups: groups, Err: err}
	}
}

// Update handles messages for the Completed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case GroupsLoadedMsg:
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ErrMsg{Err: msg.Err} }
		}
		m.groups = msg.Groups
		return m, m.setRows()

	case tea.KeyMsg:
		r, _ := m.list.SelectedItem().(row)
		switch {
		case key.Matches(msg, m.keys.Select) && r.note != nil:
			id := r.note.ID
			return m, func() tea.Msg { return SelectedNoteMsg{NoteID: id} }

		case key.Matches(msg, m.keys.Complete) && r.note != nil:
			svc, id, title := m.svc, r.note.ID, r.note.Title
			return m, func() tea.Msg {
				if _, err := svc.Notes.RevertNote(context.Background(), svc.UserID, id); err != nil {
					return ui.ErrMsg{Err: err}
				}
				return ui.NoteChangedMsg{Status: "Reverted " + title}
			}

		case key.Matches(msg, m.keys.Delete) && r.note != nil:
			svc, id, title := m.svc, r.note.ID, r.note.Title
			return m, func() tea.Msg {
				if err := svc.Notes.DeleteNote(context.Background(), svc.UserID, id); err != nil {
					return ui.ErrMsg{Err: err}
				}
				return ui.NoteChangedMsg{Status: "Deleted " + title}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) setRows() tea.Cmd {
	var items []list.Item
	total := 0
	for i := range m.groups {
		g := &m.groups[i]
		items = append(items, row{group: g})
		for j := range g.Notes {
			items = append(items, row{note: &g.Notes[j]})
		}
		total += len(g.Notes)
	}
	m.list.Title = fmt.Sprintf("Completed (%d)", total)

	cursor := m.list.Index()
	cmd := m.list.SetItems(items)
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// View renders the Completed view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height-2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Nothing completed yet.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
