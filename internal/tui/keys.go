package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds browser actions to keys.
type KeyMap struct {
	Back        key.Binding
	Forward     key.Binding
	FastBack    key.Binding
	FastForward key.Binding
	First       key.Binding
	Latest      key.Binding
	Branch      key.Binding
	Outputs     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "forward"),
		),
		FastBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev commit"),
		),
		FastForward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next commit"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first commit"),
		),
		Latest: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "latest commit"),
		),
		Branch: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "next branch"),
		),
		Outputs: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle outputs"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Back, k.Forward, k.FastBack, k.FastForward, k.First, k.Latest, k.Branch, k.Outputs, k.Help, k.Quit}
}
