package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the dashboard.
// It also feeds the help footer.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Select        key.Binding
	ReloadProfile key.Binding
	CycleFilter   key.Binding
	ClearLogs     key.Binding
	ResetDiag     key.Binding
	CopyLogs      key.Binding
	AutoScroll    key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous profile"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next profile"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "activate profile"),
		),
		ReloadProfile: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "reload profiles"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle log filter"),
		),
		ClearLogs: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear logs"),
		),
		ResetDiag: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset diagnostics"),
		),
		CopyLogs: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy logs"),
		),
		AutoScroll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle autoscroll"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup/b", "scroll logs up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn/space", "scroll logs down"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

// FullHelp returns bindings for the expanded help view, one column per slice.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.ReloadProfile},              // Profiles
		{k.CycleFilter, k.ClearLogs, k.CopyLogs, k.AutoScroll}, // Logs
		{k.PageUp, k.PageDown, k.ResetDiag, k.Help, k.Quit},    // General
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CycleFilter, k.ReloadProfile, k.Help, k.Quit}
}
