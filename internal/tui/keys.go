// ABOUTME: Key bindings for the dashboards
// ABOUTME: Bindings are enabled per screen and tab so help only lists what works

package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Tab        key.Binding
	Refresh    key.Binding
	NewRequest key.Binding
	Cancel     key.Binding
	Add        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Approve    key.Binding
	Reject     key.Binding
	Logout     key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("Tab", "Switch"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		NewRequest: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Request"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cancel"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reject"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Logout"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// contextKeys adapts a binding list to help.KeyMap
type contextKeys []key.Binding

func (k contextKeys) ShortHelp() []key.Binding {
	return k
}

func (k contextKeys) FullHelp() [][]key.Binding {
	half := (len(k) + 1) / 2
	return [][]key.Binding{k[:half], k[half:]}
}
