package ui

import (
	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
)

// Services bundles what the views need to load and change data for the
// signed in user. Config, ConfigPath and Secrets back the settings view
// and may be left empty.
type Services struct {
	Notes      *notes.Service
	Analytics  *analytics.Service
	UserID     string
	Config     *model.AppConfig
	ConfigPath string
	Secrets    Secrets
}

// Secrets reads and writes keyring credentials.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// ErrMsg carries a failed background command back to the root model.
type ErrMsg struct {
	Err error
}

// StatusMsg is a transient status line message.
type StatusMsg string

// NoteChangedMsg reports a note mutation made from any view so every
// view reloads. Status is shown in the status bar.
type NoteChangedMsg struct {
	Status string
}

// EditNoteMsg asks the root model to open the edit form for Note.
type EditNoteMsg struct {
	Note model.Note
}

// LabelsChangedMsg reports a label mutation.
type LabelsChangedMsg struct{}
