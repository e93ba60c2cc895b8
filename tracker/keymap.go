package tracker

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	togglePlay    key.Binding
	newSession    key.Binding
	nextSession   key.Binding
	finishLap     key.Binding
	prevLap       key.Binding
	nextLap       key.Binding
	toggleActive  key.Binding
	toggleMode    key.Binding
	finishSession key.Binding
	dismiss       key.Binding
	quit          key.Binding
}

var defaultKeymap = keymap{
	togglePlay: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/pause"),
	),
	newSession: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new session"),
	),
	nextSession: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch session"),
	),
	finishLap: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "next lap"),
	),
	prevLap: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "select lap above"),
	),
	nextLap: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "select lap below"),
	),
	toggleActive: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "toggle lap sharing"),
	),
	toggleMode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "switch split mode"),
	),
	finishSession: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finish session"),
	),
	dismiss: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "dismiss warning"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
