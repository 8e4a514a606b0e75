package notelist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// row is one line of the list: either a label group header or a note.
type row struct {
	header *notes.Group
	note   *model.Note
	group  string
}

// FilterValue returns the string used for filtering.
func (r row) FilterValue() string {
	if r.note != nil {
		return r.note.Title
	}
	return r.header.Name
}

// delegate implements list.ItemDelegate for note rows.
type delegate struct {
	mode model.ViewMode
	now  func() time.Time
}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single row.
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	if r.header != nil {
		fmt.Fprint(w, renderHeader(*r.header))
		return
	}

	line := renderNote(*r.note, d.mode, d.now())
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

func renderHeader(g notes.Group) string {
	style := theme.ColorStyle(g.Color).Bold(true)
	if g.Color == "" {
		style = theme.LabelStyle(nil)
	}
	return style.Render(fmt.Sprintf("● %s (%d)", g.Name, len(g.Notes)))
}

// renderNote formats a note line: priority marker, title, checklist
// progress, label badge in task mode, and due date.
func renderNote(n model.Note, mode model.ViewMode, now time.Time) string {
	var b strings.Builder

	if n.IsPriority {
		b.WriteString(theme.PriorityStyle.Render("!"))
	} else {
		b.WriteString(" ")
	}
	b.WriteString(" ")
	b.WriteString(n.Title)

	if n.IsList {
		if items, err := notes.ParseListItems(n.Description); err == nil {
			done, total := notes.Progress(items)
			b.WriteString(theme.HelpStyle.Render(fmt.Sprintf(" [%d/%d]", done, total)))
		}
	}

	if mode != model.ViewModeLabel && n.Label != nil {
		b.WriteString(" ")
		b.WriteString(theme.LabelStyle(n.Label).Render("#" + n.Label.Name))
	}

	if n.DueDate != nil {
		due := " " + ui.DueLabel(*n.DueDate, now)
		if strings.HasPrefix(due, " overdue") {
			b.WriteString(theme.OverdueStyle.Render(due))
		} else {
			b.WriteString(theme.DueDateStyle.Render(due))
		}
	}

	return b.String()
}
