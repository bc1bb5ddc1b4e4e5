package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next  key.Binding
	prev  key.Binding
	enter key.Binding
	back  key.Binding
	open  key.Binding
	quit  key.Binding
	exit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		open:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open image")),
		quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		exit:  key.NewBinding(key.WithKeys("q", "enter", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.enter},
		{k.back, k.open, k.quit},
	}
}
