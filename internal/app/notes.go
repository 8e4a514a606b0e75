package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/ui"
	"github.com/nhle/too-doo/internal/ui/noteform"
)

// formReadyMsg carries the labels the note form offers. edit is nil
// when creating.
type formReadyMsg struct {
	labels  []model.Label
	edit    *model.Note
	labelID string
}

// loadFormLabels fetches the user's labels before the form opens.
func (m Model) loadFormLabels(edit *model.Note) tea.Cmd {
	svc := m.svc
	labelID := ""
	if edit == nil && m.previousView == ViewActive {
		labelID = m.noteList.SelectedLabelID()
	}
	return func() tea.Msg {
		labels, err := svc.Notes.ListLabels(context.Background(), svc.UserID)
		if err != nil {
			return ui.ErrMsg{Err: err}
		}
		return formReadyMsg{labels: labels, edit: edit, labelID: labelID}
	}
}

// saveNote creates or updates a note from the submitted form.
func (m Model) saveNote(msg noteform.SubmittedMsg) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		if msg.EditID == "" {
			n, err := svc.Notes.CreateNote(ctx, svc.UserID, msg.Draft.NewNote())
			if err != nil {
				return ui.ErrMsg{Err: err}
			}
			return ui.NoteChangedMsg{Status: "Created " + n.Title}
		}

		patch, err := msg.Draft.Patch()
		if err != nil {
			return ui.ErrMsg{Err: err}
		}
		n, err := svc.Notes.UpdateNote(ctx, svc.UserID, msg.EditID, patch)
		if err != nil {
			return ui.ErrMsg{Err: err}
		}
		return ui.NoteChangedMsg{Status: "Saved " + n.Title}
	}
}

// setViewMode stores the Active view layout and reloads it.
func (m Model) setViewMode(mode model.ViewMode) tea.Cmd {
	svc := m.svc
	return tea.Sequence(
		func() tea.Msg {
			if err := svc.Notes.SetViewMode(context.Background(), svc.UserID, mode); err != nil {
				return ui.ErrMsg{Err: err}
			}
			return ui.StatusMsg("View: " + string(mode))
		},
		m.noteList.Load(),
	)
}

// reloadAll refreshes every data view.
func (m Model) reloadAll() tea.Cmd {
	cmds := []tea.Cmd{m.noteList.Load(), m.completed.Load(), m.analytics.Load()}
	if m.currentView == ViewDetail && m.detail.NoteID() != "" {
		d := m.detail
		cmds = append(cmds, d.Load(d.NoteID()))
	}
	return tea.Batch(cmds...)
}

// refresh reloads the views and asks every background job to run now.
func (m Model) refresh() tea.Cmd {
	if m.poller != nil {
		m.poller.TriggerAll()
	}
	return m.reloadAll()
}
