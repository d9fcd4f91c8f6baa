package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play    key.Binding
	Pause   key.Binding
	Stop    key.Binding
	Restart key.Binding
	Next    key.Binding
	Prev    key.Binding
	Select  key.Binding
	Up      key.Binding
	Down    key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Next:    key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next camera")),
		Prev:    key.NewBinding(key.WithKeys("left", "b"), key.WithHelp("←/b", "prev camera")),
		Select:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "select camera")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "alert up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "alert down")),
		Dismiss: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "dismiss alert")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Pause, k.Stop, k.Next, k.Dismiss, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Pause, k.Stop, k.Restart},
		{k.Next, k.Prev, k.Select},
		{k.Up, k.Down, k.Dismiss},
		{k.Help, k.Quit},
	}
}
