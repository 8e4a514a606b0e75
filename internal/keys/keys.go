package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Views
	ViewActive    key.Binding
	ViewCompleted key.Binding
	ViewAnalytics key.Binding
	Labels        key.Binding
	Settings      key.Binding

	// Note actions
	New        key.Binding
	Edit       key.Binding
	Complete   key.Binding
	Delete     key.Binding
	Priority   key.Binding
	ToggleItem key.Binding

	// Ordering
	MoveUp   key.Binding
	MoveDown key.Binding

	// Layout and filters
	ViewMode    key.Binding
	DueDateSort key.Binding
	CycleLabel  key.Binding
	Timeframe   key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open note"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ViewActive: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "active notes"),
		),
		ViewCompleted: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "completed"),
		),
		ViewAnalytics: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "analytics"),
		),
		Labels: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "manage labels"),
		),
		Settings: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "complete/revert"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle priority"),
		),
		ToggleItem: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "check item"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		ViewMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "task/label view"),
		),
		DueDateSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by due date"),
		),
		CycleLabel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "filter label"),
		),
		Timeframe: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle timeframe"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.New, k.Complete, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.ViewActive, k.ViewCompleted, k.ViewAnalytics, k.Labels, k.Settings, k.Command, k.Help, k.Refresh},
		{k.New, k.Edit, k.Complete, k.Delete, k.Priority, k.ToggleItem},
		{k.MoveUp, k.MoveDown, k.ViewMode, k.DueDateSort, k.CycleLabel, k.Timeframe},
	}
}
