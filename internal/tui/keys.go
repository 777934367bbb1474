package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings shared by every page.
type KeyMap struct {
	Quit    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Rerun   key.Binding
	Commits key.Binding
	Streams key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-run"),
		),
		Commits: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "commits"),
		),
		Streams: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "streams"),
		),
	}
}

// helpLine renders bindings as "key action · key action".
func helpLine(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += " · "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return helpStyle.Render(out)
}
