package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Totals key.Binding
	Speed  key.Binding
	Unit   key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Totals: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "total usage")),
		Speed:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speed")),
		Unit:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unit")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset usage")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Totals, k.Speed, k.Unit, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
