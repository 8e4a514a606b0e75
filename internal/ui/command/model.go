package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nhle/too-doo/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// CloseMsg is emitted when the palette is dismissed.
type CloseMsg struct{}

// Commands is the vocabulary offered as suggestions.
var Commands = []string{
	"new",
	"active",
	"completed",
	"analytics",
	"labels",
	"settings",
	"view task",
	"view label",
	"timeframe 1w",
	"timeframe 1m",
	"timeframe 3m",
	"sync",
	"refresh",
	"help",
	"quit",
}

const maxSuggestions = 5

// Suggest returns the commands fuzzily matching input, best first.
// An empty input suggests nothing.
func Suggest(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, Commands)
	out := make([]string, 0, min(len(matches), maxSuggestions))
	for i, m := range matches {
		if i == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// Model is the command palette view.
type Model struct {
	input       textinput.Model
	suggestions []string
	width       int
	height      int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{input: ti, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette. Tab completes the
// best suggestion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.suggestions = nil
			if cmd == "" {
				return m, nil
			}
			return m, func() tea.Msg { return CommandMsg(cmd) }
		case "esc":
			m.input.Reset()
			m.suggestions = nil
			return m, func() tea.Msg { return CloseMsg{} }
		case "tab":
			if len(m.suggestions) > 0 {
				m.input.SetValue(m.suggestions[0])
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestions = Suggest(m.input.Value())
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	lines := []string{title, m.input.View()}
	for i, s := range m.suggestions {
		if i == 0 {
			lines = append(lines, theme.SelectedItemStyle.Render(s))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(s))
		}
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
