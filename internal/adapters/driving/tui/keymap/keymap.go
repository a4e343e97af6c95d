// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Back leaves the results table for the form, or the settings view.
	Back key.Binding

	// Search submits the form.
	Search key.Binding

	// NextField and PrevField move focus through the form.
	NextField key.Binding
	PrevField key.Binding

	// Up and Down move through the results table.
	Up   key.Binding
	Down key.Binding

	// NextPage and PrevPage page through results.
	NextPage key.Binding
	PrevPage key.Binding

	// HistoryBack and HistoryForward walk the query string history.
	HistoryBack    key.Binding
	HistoryForward key.Binding

	// Reset clears the form and results.
	Reset key.Binding

	// Download writes every result page to a file.
	Download key.Binding

	// SwitchKind cycles between search kinds.
	SwitchKind key.Binding

	// Settings opens the settings view.
	Settings key.Binding

	// Edit starts editing the selected setting.
	Edit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "n"),
			key.WithHelp("n/pgdn", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "p"),
			key.WithHelp("p/pgup", "prev page"),
		),
		HistoryBack: key.NewBinding(
			key.WithKeys("alt+left", "["),
			key.WithHelp("[", "history back"),
		),
		HistoryForward: key.NewBinding(
			key.WithKeys("alt+right", "]"),
			key.WithHelp("]", "history forward"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset"),
		),
		Download: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "download"),
		),
		SwitchKind: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch search"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "settings"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.SwitchKind, k.Help, k.Quit}
}

// FormHelp returns bindings for the search form.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextField, k.Reset, k.SwitchKind}
}

// ResultsHelp returns bindings for the results table.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.HistoryBack, k.Back}
}

// FullHelp returns every binding grouped by area.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.NextField, k.PrevField, k.Reset, k.Download},
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Back},
		{k.HistoryBack, k.HistoryForward, k.SwitchKind, k.Settings},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
