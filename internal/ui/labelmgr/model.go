package labelmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// CloseMsg signals the parent to close the label manager.
type CloseMsg struct{}

// orderKey is the cache key of the label order.
const orderKey = "labels"

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

type labelsLoadedMsg struct {
	labels []model.Label
	counts map[string]int
	err    error
}

type labelSavedMsg struct {
	status string
	err    error
}

type reorderedMsg struct{ err error }

// Model manages a user's labels: create, rename, recolor, delete and
// reorder. Reordering shows at once and is undone if saving fails.
type Model struct {
	mode        mode
	svc         ui.Services
	keys        *keys.KeyMap
	labels      []model.Label
	counts      map[string]int
	order       *notes.Cache[[]string]
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new label manager model.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeList,
		svc:    svc,
		keys:   k,
		order:  notes.NewCache[[]string](),
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init loads the labels.
func (m Model) Init() tea.Cmd {
	return m.loadLabels()
}

// Editing reports whether a form has keyboard focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case labelsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.labels = msg.labels
		m.counts = msg.counts
		if !m.order.Pending(orderKey) {
			m.order.Load(orderKey, labelIDs(m.labels))
		}
		if m.selectedIdx >= len(m.labels) {
			m.selectedIdx = max(len(m.labels)-1, 0)
		}
		return m, nil

	case labelSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, m.loadLabels()
		}
		m.statusMsg = msg.status
		return m, tea.Batch(m.loadLabels(), func() tea.Msg { return ui.LabelsChangedMsg{} })

	case reorderedMsg:
		if msg.err != nil {
			snapshot := m.order.Rollback(orderKey)
			var re *notes.ReorderError
			if errors.As(msg.err, &re) {
				snapshot = re.Snapshot
			}
			m.order.Load(orderKey, snapshot)
			m.statusMsg = fmt.Sprintf("Error: order restored: %v", msg.err)
			return m, nil
		}
		m.order.Commit(orderKey)
		return m, tea.Batch(m.loadLabels(), func() tea.Msg { return ui.LabelsChangedMsg{} })

	case tea.KeyMsg:
		if m.mode != modeList && msg.String() == "esc" {
			m.mode = modeList
			return m, nil
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ordered := m.ordered()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.MoveUp):
		return m.move(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m.move(1)

	case key.Matches(msg, m.keys.Down):
		if len(ordered) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(ordered)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(ordered) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(ordered)) % len(ordered)
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		m.fb.name = ""
		m.fb.color = model.DefaultLabelColor
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(ordered) == 0 {
			return m, nil
		}
		l := ordered[m.selectedIdx]
		m.editingID = l.ID
		m.fb.name = l.Name
		m.fb.color = l.Color
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(ordered) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(ordered[m.selectedIdx])
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

// move shifts the selected label by delta.
func (m Model) move(delta int) (Model, tea.Cmd) {
	if m.order.Pending(orderKey) {
		return m, nil
	}
	ids, _ := m.order.Value(orderKey)
	from, to := m.selectedIdx, m.selectedIdx+delta
	if from >= len(ids) || to < 0 || to >= len(ids) {
		return m, nil
	}
	moved, err := notes.Move(ids, from, to)
	if err != nil {
		return m, nil
	}
	m.order.Apply(orderKey, moved)
	m.selectedIdx = to

	svc := m.svc
	return m, func() tea.Msg {
		_, err := svc.Notes.ReorderLabels(context.Background(), svc.UserID, ids, from, to)
		return reorderedMsg{err: err}
	}
}

// ordered returns the labels in their displayed order.
func (m Model) ordered() []model.Label {
	ids, ok := m.order.Value(orderKey)
	if !ok {
		return m.labels
	}
	byID := make(map[string]model.Label, len(m.labels))
	for _, l := range m.labels {
		byID[l.ID] = l
	}
	out := make([]model.Label, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (m Model) buildForm() *huh.Form {
	colors := make([]huh.Option[string], 0, len(model.LabelPalette))
	for _, c := range model.LabelPalette {
		colors = append(colors, huh.NewOption(theme.ColorStyle(c.Value).Render("●")+" "+c.Name, c.Value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Label name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&m.fb.color),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(l model.Label) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete label %q?", l.Name)).
				Description("Its notes stay and become unlabeled.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveLabel()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		ordered := m.ordered()
		if m.fb.confirm && m.selectedIdx < len(ordered) {
			return m, m.deleteLabel(ordered[m.selectedIdx])
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the label manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Labels"))
	b.WriteString("\n\n")

	ordered := m.ordered()
	if len(ordered) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).
			Render("No labels yet. Press 'n' to create one."))
	}
	for i, l := range ordered {
		line := theme.ColorStyle(l.Color).Render("●") + " " + l.Name +
			theme.HelpStyle.Render(fmt.Sprintf("  %d active", m.counts[l.ID]))
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if n := m.counts[""]; n > 0 {
		b.WriteString(theme.ListItemStyle.Render(theme.LabelStyle(nil).Render("●") + " " +
			notes.GroupUncategorized + theme.HelpStyle.Render(fmt.Sprintf("  %d active", n))))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n new | e edit | d delete | K/J move | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

// loadLabels fetches labels by position and their active note counts.
// The unlabeled count is stored under the empty key.
func (m Model) loadLabels() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		labels, err := svc.Notes.ListLabels(ctx, svc.UserID)
		if err != nil {
			return labelsLoadedMsg{err: err}
		}
		rows, err := svc.Notes.LabelCounts(ctx, svc.UserID, true)
		if err != nil {
			return labelsLoadedMsg{err: err}
		}
		counts := make(map[string]int, len(rows))
		for _, r := range rows {
			k := ""
			if r.LabelID != nil {
				k = *r.LabelID
			}
			counts[k] += r.Count
		}
		return labelsLoadedMsg{labels: labels, counts: counts}
	}
}

func (m Model) saveLabel() tea.Cmd {
	svc := m.svc
	name, color, editID := m.fb.name, m.fb.color, m.editingID
	return func() tea.Msg {
		ctx := context.Background()
		if editID == "" {
			_, err := svc.Notes.CreateLabel(ctx, svc.UserID, name, color)
			return labelSavedMsg{status: "Label created", err: err}
		}
		_, err := svc.Notes.UpdateLabel(ctx, svc.UserID, editID, name, color)
		return labelSavedMsg{status: "Label saved", err: err}
	}
}

func (m Model) deleteLabel(l model.Label) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Notes.DeleteLabel(context.Background(), svc.UserID, l.ID)
		return labelSavedMsg{status: "Deleted " + l.Name, err: err}
	}
}

func labelIDs(labels []model.Label) []string {
	ids := make([]string, len(labels))
	for i, l := range labels {
		ids[i] = l.ID
	}
	return ids
}
