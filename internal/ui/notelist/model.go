package notelist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// unlabeledKey is the group key of notes without a label.
const unlabeledKey = "unlabeled"

// NotesLoadedMsg is sent when the Active view has been loaded.
type NotesLoadedMsg struct {
	Mode   model.ViewMode
	Notes  []model.Note
	Groups []notes.Group
	Labels []model.Label
	Err    error
}

// SelectedNoteMsg is sent when the user opens a note.
type SelectedNoteMsg struct {
	NoteID string
}

// reorderedMsg reports the outcome of a persisted move.
type reorderedMsg struct {
	key string
	err error
}

// viewModeSavedMsg reports a persisted view mode change.
type viewModeSavedMsg struct {
	mode model.ViewMode
	err  error
}

// Model is the Active notes view. In label mode notes are grouped under
// their label and can be moved within a group; moves show immediately
// and are rolled back if saving fails.
type Model struct {
	list        list.Model
	svc         ui.Services
	keys        *keys.KeyMap
	mode        model.ViewMode
	query       notes.ActiveQuery
	labels      []model.Label
	labelIdx    int
	notes       []model.Note
	groups      []notes.Group
	order       *notes.Cache[[]string]
	searchMode  bool
	searchInput textinput.Model
	loaded      bool
	now         func() time.Time
	width       int
	height      int
}

// New creates the Active notes view.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	now := time.Now
	l := list.New([]list.Item{}, delegate{mode: model.ViewModeTask, now: now}, width, height-2)
	l.Title = "Active"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search notes..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		svc:         svc,
		keys:        k,
		mode:        model.ViewModeTask,
		order:       notes.NewCache[[]string](),
		searchInput: si,
		now:         now,
		width:       width,
		height:      height,
	}
}

// Init loads the stored view mode and the notes.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Mode returns the current layout.
func (m Model) Mode() model.ViewMode {
	return m.mode
}

// Update handles messages for the Active view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NotesLoadedMsg:
		if msg.Err != nil {
			return m, errCmd(msg.Err)
		}
		m.loaded = true
		m.mode = msg.Mode
		m.notes = msg.Notes
		m.groups = msg.Groups
		m.labels = msg.Labels
		if m.labelIdx > len(m.labels)+1 {
			m.labelIdx = 0
		}
		for _, g := range m.groups {
			k := groupKey(g)
			if !m.order.Pending(k) {
				m.order.Load(k, notes.IDs(g.Notes))
			}
		}
		return m, m.refreshRows("")

	case reorderedMsg:
		if msg.err != nil {
			snapshot := m.order.Rollback(msg.key)
			var re *notes.ReorderError
			if errors.As(msg.err, &re) {
				snapshot = re.Snapshot
			}
			m.order.Load(msg.key, snapshot)
			return m, tea.Batch(m.refreshRows(""), errCmd(fmt.Errorf("order restored: %w", msg.err)))
		}
		m.order.Commit(msg.key)
		return m, nil

	case viewModeSavedMsg:
		if msg.err != nil {
			return m, errCmd(msg.err)
		}
		return m, m.Load()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query.Query = m.searchInput.Value()
		return m, m.Load()
	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query.Query = ""
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	selected := m.selectedNote()

	switch {
	case key.Matches(msg, m.keys.Select):
		if selected == nil {
			return m, nil
		}
		id := selected.ID
		return m, func() tea.Msg { return SelectedNoteMsg{NoteID: id} }

	case key.Matches(msg, m.keys.Edit):
		if selected == nil {
			return m, nil
		}
		n := *selected
		return m, func() tea.Msg { return ui.EditNoteMsg{Note: n} }

	case key.Matches(msg, m.keys.Complete):
		if selected == nil {
			return m, nil
		}
		return m, m.mutate(selected.ID, "Completed "+selected.Title, m.svc.Notes.CompleteNote)

	case key.Matches(msg, m.keys.Priority):
		if selected == nil {
			return m, nil
		}
		return m, m.mutate(selected.ID, "Priority toggled", m.svc.Notes.TogglePriority)

	case key.Matches(msg, m.keys.Delete):
		if selected == nil {
			return m, nil
		}
		svc, id, title := m.svc, selected.ID, selected.Title
		return m, func() tea.Msg {
			if err := svc.Notes.DeleteNote(context.Background(), svc.UserID, id); err != nil {
				return ui.ErrMsg{Err: err}
			}
			return ui.NoteChangedMsg{Status: "Deleted " + title}
		}

	case key.Matches(msg, m.keys.MoveUp):
		return m.move(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m.move(1)

	case key.Matches(msg, m.keys.ViewMode):
		next := model.ViewModeLabel
		if m.mode == model.ViewModeLabel {
			next = model.ViewModeTask
		}
		svc := m.svc
		return m, func() tea.Msg {
			err := svc.Notes.SetViewMode(context.Background(), svc.UserID, next)
			return viewModeSavedMsg{mode: next, err: err}
		}

	case key.Matches(msg, m.keys.DueDateSort):
		m.query.DueDateOnly = !m.query.DueDateOnly
		return m, m.Load()

	case key.Matches(msg, m.keys.CycleLabel):
		m.labelIdx = (m.labelIdx + 1) % (len(m.labels) + 2)
		return m, m.Load()

	case msg.String() == "/":
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// move shifts the selected note by delta within its label group. The
// new order is shown right away and saved in the background.
func (m Model) move(delta int) (Model, tea.Cmd) {
	if m.mode != model.ViewModeLabel {
		return m, func() tea.Msg { return ui.StatusMsg("Switch to label view (v) to reorder") }
	}
	r, ok := m.list.SelectedItem().(row)
	if !ok || r.note == nil {
		return m, nil
	}
	if m.order.Pending(r.group) {
		return m, nil
	}

	ids, _ := m.order.Value(r.group)
	from := indexOf(ids, r.note.ID)
	to := from + delta
	if from < 0 || to < 0 || to >= len(ids) {
		return m, nil
	}

	moved, err := notes.Move(ids, from, to)
	if err != nil {
		return m, errCmd(err)
	}
	m.order.Apply(r.group, moved)

	svc, group, noteID := m.svc, r.group, r.note.ID
	persist := func() tea.Msg {
		_, err := svc.Notes.ReorderNotes(context.Background(), svc.UserID, ids, from, to)
		return reorderedMsg{key: group, err: err}
	}
	return m, tea.Batch(m.refreshRows(noteID), persist)
}

func (m Model) mutate(
	id, status string,
	fn func(ctx context.Context, userID, id string) (*model.Note, error),
) tea.Cmd {
	userID := m.svc.UserID
	return func() tea.Msg {
		if _, err := fn(context.Background(), userID, id); err != nil {
			return ui.ErrMsg{Err: err}
		}
		return ui.NoteChangedMsg{Status: status}
	}
}

// Load returns a command that fetches the view mode, labels and notes.
func (m Model) Load() tea.Cmd {
	svc := m.svc
	q := m.query
	labelIdx := m.labelIdx
	labels := m.labels
	return func() tea.Msg {
		ctx := context.Background()
		mode, err := svc.Notes.ViewMode(ctx, svc.UserID)
		if err != nil {
			return NotesLoadedMsg{Err: err}
		}
		q.Mode = mode
		applyLabelFilter(&q, labels, labelIdx)

		all, err := svc.Notes.ListLabels(ctx, svc.UserID)
		if err != nil {
			return NotesLoadedMsg{Err: err}
		}

		msg := NotesLoadedMsg{Mode: mode, Labels: all}
		if mode == model.ViewModeLabel {
			msg.Groups, err = svc.Notes.LabelGroups(ctx, svc.UserID, q)
		} else {
			msg.Notes, err = svc.Notes.ActiveNotes(ctx, svc.UserID, q)
		}
		msg.Err = err
		return msg
	}
}

// applyLabelFilter maps the label cycle index onto the query: 0 is all
// notes, 1..n a label, n+1 the unlabeled notes.
func applyLabelFilter(q *notes.ActiveQuery, labels []model.Label, idx int) {
	q.LabelID = nil
	q.Unlabeled = false
	switch {
	case idx == 0 || idx > len(labels)+1:
	case idx == len(labels)+1:
		q.Unlabeled = true
	default:
		id := labels[idx-1].ID
		q.LabelID = &id
	}
}

// refreshRows rebuilds the list rows from the loaded data and the
// optimistic order. When focusID is set the cursor follows that note.
func (m *Model) refreshRows(focusID string) tea.Cmd {
	m.list.SetDelegate(delegate{mode: m.mode, now: m.now})
	m.list.Title = m.title()

	var items []list.Item
	if m.mode == model.ViewModeLabel {
		for i := range m.groups {
			g := m.groups[i]
			k := groupKey(g)
			ids, _ := m.order.Value(k)
			g.Notes = orderNotes(g.Notes, ids)
			items = append(items, row{header: &g, group: k})
			for j := range g.Notes {
				items = append(items, row{note: &g.Notes[j], group: k})
			}
		}
	} else {
		for i := range m.notes {
			items = append(items, row{note: &m.notes[i]})
		}
	}

	cursor := m.list.Index()
	cmd := m.list.SetItems(items)
	if focusID != "" {
		for i, it := range items {
			if r := it.(row); r.note != nil && r.note.ID == focusID {
				cursor = i
				break
			}
		}
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

func (m Model) title() string {
	t := "Active"
	if m.mode == model.ViewModeLabel {
		t += " · by label"
	}
	switch {
	case m.labelIdx == len(m.labels)+1:
		t += " · " + notes.GroupUncategorized
	case m.labelIdx > 0 && m.labelIdx <= len(m.labels):
		t += " · #" + m.labels[m.labelIdx-1].Name
	}
	if m.query.DueDateOnly {
		t += " · due date"
	}
	if m.query.Query != "" {
		t += fmt.Sprintf(" · %q", m.query.Query)
	}
	return t
}

// selectedNote returns the focused note, or nil on a header row.
func (m Model) selectedNote() *model.Note {
	r, ok := m.list.SelectedItem().(row)
	if !ok || r.note == nil {
		return nil
	}
	return r.note
}

// View renders the Active view.
func (m Model) View() string {
	body := m.list.View()
	if m.loaded && len(m.list.Items()) == 0 {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.height-2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notes yet.\n\nPress n to add one.")
	}

	if m.searchMode {
		bar := lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, bar, body)
	}
	return body
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

func groupKey(g notes.Group) string {
	if g.LabelID == nil {
		return unlabeledKey
	}
	return *g.LabelID
}

// orderNotes returns ns arranged by ids. Notes missing from ids keep
// their relative order at the end.
func orderNotes(ns []model.Note, ids []string) []model.Note {
	byID := make(map[string]model.Note, len(ns))
	for _, n := range ns {
		byID[n.ID] = n
	}
	out := make([]model.Note, 0, len(ns))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
			delete(byID, id)
		}
	}
	for _, n := range ns {
		if _, ok := byID[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return ui.ErrMsg{Err: err} }
}

// SelectedLabelID returns the label of the focused row in label mode,
// or "" otherwise.
func (m Model) SelectedLabelID() string {
	r, ok := m.list.SelectedItem().(row)
	if !ok || m.mode != model.ViewModeLabel || r.group == unlabeledKey {
		return ""
	}
	return r.group
}
