package noteform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
)

const dateLayout = "2006-01-02"

// SubmittedMsg is dispatched when the form completes. EditID is empty
// for a new note.
type SubmittedMsg struct {
	EditID string
	Draft  Draft
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// Draft is the form content. Body holds the description, or one
// checklist item per line when IsList is set.
type Draft struct {
	Title      string
	Body       string
	IsList     bool
	LabelID    string
	DueDate    *time.Time
	IsPriority bool
}

// NewNote converts the draft into service input.
func (d Draft) NewNote() notes.NewNote {
	n := notes.NewNote{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Body,
		DueDate:     d.DueDate,
		IsPriority:  d.IsPriority,
		IsList:      d.IsList,
	}
	if d.LabelID != "" {
		id := d.LabelID
		n.LabelID = &id
	}
	if d.IsList {
		n.Items = notes.ItemsFromText(d.Body)
	}
	return n
}

// Patch converts the draft into an update of every form field.
func (d Draft) Patch() (model.NotePatch, error) {
	title := strings.TrimSpace(d.Title)
	body := d.Body
	if d.IsList {
		encoded, err := notes.EncodeListItems(notes.ItemsFromText(d.Body))
		if err != nil {
			return model.NotePatch{}, err
		}
		body = encoded
	}
	isList, priority := d.IsList, d.IsPriority

	p := model.NotePatch{
		Title:       &title,
		Description: &body,
		IsList:      &isList,
		IsPriority:  &priority,
	}
	if d.LabelID == "" {
		p.ClearLabel = true
	} else {
		id := d.LabelID
		p.LabelID = &id
	}
	if d.DueDate == nil {
		p.ClearDueDate = true
	} else {
		p.DueDate = d.DueDate
	}
	return p, nil
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title    string
	body     string
	isList   bool
	labelID  string
	dueDate  string
	priority bool
}

// Model is the Bubble Tea model for the note create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	editID string
	labels []model.Label
	width  int
	height int
}

// New creates a new note form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// SetLabels sets the labels offered by the label selector.
func (m *Model) SetLabels(labels []model.Label) {
	m.labels = labels
}

// StartCreate initializes the form for a new note, preselecting labelID
// when it is not empty.
func (m *Model) StartCreate(labelID string) tea.Cmd {
	m.editID = ""
	*m.fb = formBindings{labelID: labelID}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing note.
func (m *Model) StartEdit(n model.Note) tea.Cmd {
	m.editID = n.ID
	*m.fb = formBindings{
		title:    n.Title,
		body:     n.Description,
		isList:   n.IsList,
		priority: n.IsPriority,
	}
	if n.IsList {
		if items, err := notes.ParseListItems(n.Description); err == nil {
			m.fb.body = notes.ItemsToText(items)
		}
	}
	if n.LabelID != nil {
		m.fb.labelID = *n.LabelID
	}
	if n.DueDate != nil {
		m.fb.dueDate = n.DueDate.Format(dateLayout)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the note form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the note form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Note"
	if m.editID != "" {
		titleText = "Edit Note"
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(titleText)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewConfirm().
				Title("Checklist?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.isList),
			huh.NewText().
				Title("Details").
				Description("For a checklist, one item per line").
				Value(&m.fb.body),
			m.labelField(),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
			huh.NewConfirm().
				Title("Priority?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.priority),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) labelField() huh.Field {
	opts := []huh.Option[string]{huh.NewOption("None", "")}
	for _, l := range m.labels {
		opts = append(opts, huh.NewOption(l.Name, l.ID))
	}
	return huh.NewSelect[string]().
		Title("Label").
		Options(opts...).
		Value(&m.fb.labelID)
}

// draft reads the bound values. The due date is parsed in local time.
func (m Model) draft() Draft {
	d := Draft{
		Title:      m.fb.title,
		Body:       m.fb.body,
		IsList:     m.fb.isList,
		LabelID:    m.fb.labelID,
		IsPriority: m.fb.priority,
	}
	if s := strings.TrimSpace(m.fb.dueDate); s != "" {
		if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
			d.DueDate = &t
		}
	}
	return d
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmittedMsg{EditID: m.editID, Draft: m.draft()}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
