// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Enter   key.Binding
	Back    key.Binding
	Forward key.Binding
	Menu    key.Binding
	Link    key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go / run")),
		Back:    key.NewBinding(key.WithKeys("ctrl+b", "alt+left"), key.WithHelp("ctrl+b", "back")),
		Forward: key.NewBinding(key.WithKeys("ctrl+f", "alt+right"), key.WithHelp("ctrl+f", "forward")),
		Menu:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "menu")),
		Link:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "follow link")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.Forward, k.Menu, k.Link, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Escape}}
}
