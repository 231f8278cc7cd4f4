// Package keys contains keybinding definitions for the field browser.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the field browser.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Category cycling
	NextCategory key.Binding
	PrevCategory key.Binding

	// Panes
	SwitchPane key.Binding
	Filter     key.Binding
	Latex      key.Binding

	// General
	Logs   key.Binding
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// Browser holds the default browser bindings.
var Browser = DefaultKeyMap()

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first field"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last field"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("l", "right", "]"),
			key.WithHelp("l/→", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("h", "left", "["),
			key.WithHelp("h/←", "previous category"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Latex: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle latex label"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug logs"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCategory, k.Filter, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.NextCategory, k.PrevCategory, k.SwitchPane},
		{k.Filter, k.Latex, k.Escape},
		{k.Logs, k.Help, k.Quit},
	}
}
