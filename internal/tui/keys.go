package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the console.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Start    key.Binding
	Stop     key.Binding
	StartAll key.Binding
	StopAll  key.Binding
	Delete   key.Binding

	Add        key.Binding
	Refresh    key.Binding
	ClearLog   key.Binding
	SaveTicket key.Binding

	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	StartAll: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "start all"),
	),
	StopAll: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "stop all"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add node"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	ClearLog: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear log"),
	),
	SaveTicket: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "save ticket"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "next/submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
