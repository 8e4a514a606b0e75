// Package settings is the view for preferences kept outside the notes:
// the Active view layout and mail capture.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/too-doo/internal/capture"
	"github.com/nhle/too-doo/internal/keys"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/theme"
	"github.com/nhle/too-doo/internal/ui"
)

// probeTimeout bounds a mail connection test.
const probeTimeout = 20 * time.Second

type mode int

const (
	modeList mode = iota
	modeMailForm
	modeValidating
	modeValidateResult
)

// Rows of the settings list.
const (
	rowViewMode = iota
	rowMail
	rowTestMail
	rowCount
)

// CloseMsg signals the settings view should close.
type CloseMsg struct{}

type loadedMsg struct {
	mode model.ViewMode
	err  error
}

type mailSavedMsg struct {
	mail model.MailConfig
	err  error
}

type validatedMsg struct {
	err error
}

// Prober tests a mail connection.
type Prober func(ctx context.Context, mc model.MailConfig, password string) error

// dialMail logs in to the configured IMAP server.
func dialMail(ctx context.Context, mc model.MailConfig, password string) error {
	return capture.NewIMAPClient(mc.Host, mc.Port, mc.Username, password, mc.Mailbox, mc.TLS).Validate(ctx)
}

// mailFields holds the values huh binds to. It lives behind a pointer so
// copies of Model keep writing to the same fields.
type mailFields struct {
	enabled   bool
	host      string
	port      string
	username  string
	password  string
	mailbox   string
	tls       bool
	userEmail string
}

// Model is the settings view.
type Model struct {
	mode     mode
	svc      ui.Services
	keys     *keys.KeyMap
	viewMode model.ViewMode
	selected int
	probe    Prober

	form   *huh.Form
	fields *mailFields

	spinner    spinner.Model
	validError error
	statusMsg  string

	width, height int
}

// New creates the settings view.
func New(svc ui.Services, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		svc:      svc,
		keys:     k,
		viewMode: model.ViewModeTask,
		probe:    dialMail,
		fields:   &mailFields{},
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init loads the saved view mode.
func (m Model) Init() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		mode, err := svc.Notes.ViewMode(context.Background(), svc.UserID)
		return loadedMsg{mode: mode, err: err}
	}
}

// Editing reports whether a form owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading settings: %v", msg.err)
			return m, nil
		}
		m.viewMode = msg.mode
		return m, nil

	case mailSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving mail settings: %v", msg.err)
			return m, nil
		}
		m.svc.Config.Mail = msg.mail
		m.statusMsg = "Mail settings saved, restart to apply"
		return m, nil

	case validatedMsg:
		m.validError = msg.err
		m.mode = modeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == modeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	if m.mode == modeMailForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeMailForm:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)

	case modeValidating:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
		}
		return m, nil

	case modeValidateResult:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Select) {
			m.mode = modeList
			m.validError = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % rowCount
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected + rowCount - 1) % rowCount
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.activate()
	}
	return m, nil
}

// activate runs the action of the selected row.
func (m Model) activate() (Model, tea.Cmd) {
	switch m.selected {
	case rowViewMode:
		next := model.ViewModeLabel
		if m.viewMode == model.ViewModeLabel {
			next = model.ViewModeTask
		}
		m.viewMode = next
		svc := m.svc
		return m, func() tea.Msg {
			if err := svc.Notes.SetViewMode(context.Background(), svc.UserID, next); err != nil {
				return ui.ErrMsg{Err: err}
			}
			return ui.NoteChangedMsg{Status: fmt.Sprintf("View mode set to %s", next)}
		}

	case rowMail:
		if m.svc.Config == nil {
			m.statusMsg = "No configuration file loaded"
			return m, nil
		}
		m.fillForm(m.svc.Config.Mail)
		m.form = m.buildMailForm()
		m.mode = modeMailForm
		return m, m.form.Init()

	case rowTestMail:
		if m.svc.Config == nil || m.svc.Config.Mail.Host == "" {
			m.statusMsg = "Configure mail capture first"
			return m, nil
		}
		m.mode = modeValidating
		return m, tea.Batch(m.spinner.Tick, m.validate(m.svc.Config.Mail))
	}
	return m, nil
}

func (m Model) fillForm(mc model.MailConfig) {
	*m.fields = mailFields{
		enabled:   mc.Enabled,
		host:      mc.Host,
		port:      mc.Port,
		username:  mc.Username,
		mailbox:   mc.Mailbox,
		tls:       mc.TLS,
		userEmail: mc.UserEmail,
	}
}

func (m Model) buildMailForm() *huh.Form {
	f := m.fields
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Capture mail as notes").
				Affirmative("Yes").
				Negative("No").
				Value(&f.enabled),
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&f.host).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&f.port).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&f.username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Leave empty to keep the stored password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
			huh.NewInput().
				Title("Mailbox").
				Placeholder("INBOX").
				Value(&f.mailbox),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&f.tls),
			huh.NewInput().
				Title("Deliver to account").
				Description("Email of the Too-Doo account that receives the notes").
				Value(&f.userEmail).
				Validate(validateRequired("Account")),
		),
	).WithWidth(m.formWidth())
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
		return m, m.saveMail(m.formMail(), m.fields.password)
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// formMail builds the mail settings from the form values.
func (m Model) formMail() model.MailConfig {
	f := m.fields
	mc := model.MailConfig{
		Enabled:      f.enabled,
		Host:         strings.TrimSpace(f.host),
		Port:         strings.TrimSpace(f.port),
		Username:     strings.TrimSpace(f.username),
		Mailbox:      strings.TrimSpace(f.mailbox),
		TLS:          f.tls,
		UserEmail:    strings.TrimSpace(f.userEmail),
		PollInterval: 5 * time.Minute,
	}
	if m.svc.Config != nil && m.svc.Config.Mail.PollInterval > 0 {
		mc.PollInterval = m.svc.Config.Mail.PollInterval
	}
	if mc.Mailbox == "" {
		mc.Mailbox = "INBOX"
	}
	return mc
}

// saveMail writes the mail settings to the config file and the password
// to the keyring.
func (m Model) saveMail(mc model.MailConfig, password string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		cfg := *svc.Config
		cfg.Mail = mc
		if err := cfg.Validate(); err != nil {
			return mailSavedMsg{err: err}
		}
		if password != "" {
			if svc.Secrets == nil {
				return mailSavedMsg{err: errors.New("no keyring available for the password")}
			}
			if err := svc.Secrets.Set(model.MailPasswordKey, password); err != nil {
				return mailSavedMsg{err: err}
			}
		}
		if err := model.SaveConfig(svc.ConfigPath, &cfg); err != nil {
			return mailSavedMsg{err: err}
		}
		return mailSavedMsg{mail: mc}
	}
}

// validate tests the saved mail settings with the stored password.
func (m Model) validate(mc model.MailConfig) tea.Cmd {
	svc, probe := m.svc, m.probe
	return func() tea.Msg {
		if svc.Secrets == nil {
			return validatedMsg{err: errors.New("no keyring available")}
		}
		password, err := svc.Secrets.Get(model.MailPasswordKey)
		if err != nil {
			return validatedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return validatedMsg{err: probe(ctx, mc, password)}
	}
}

// View renders the settings view.
func (m Model) View() string {
	box := lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height)

	switch m.mode {
	case modeMailForm:
		if m.form == nil {
			return ""
		}
		return box.Render(m.form.View())
	case modeValidating:
		return box.Render(fmt.Sprintf("%s Testing connection...\n\nPress esc to cancel.", m.spinner.View()))
	case modeValidateResult:
		return box.Render(m.viewValidateResult())
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Settings"))
	b.WriteString("\n\n")
	for i, line := range m.rows() {
		if i == m.selected {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter change | esc back"))
	return box.Render(b.String())
}

func (m Model) rows() []string {
	mail := "disabled"
	if m.svc.Config != nil && m.svc.Config.Mail.Enabled {
		mc := m.svc.Config.Mail
		mail = fmt.Sprintf("%s@%s → %s", mc.Username, mc.Host, mc.UserEmail)
	}
	return []string{
		fmt.Sprintf("View mode      %s", m.viewMode),
		fmt.Sprintf("Mail capture   %s", mail),
		"Test mail connection",
	}
}

func (m Model) viewValidateResult() string {
	if m.validError != nil {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Connection failed") +
			"\n\n" + m.validError.Error() + "\n\n" + theme.HelpStyle.Render("enter/esc back")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Connection successful") +
		"\n\n" + theme.HelpStyle.Render("enter/esc back")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
