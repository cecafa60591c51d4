package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the shell's bindings. List navigation and filtering keys
// belong to bubbles/list and are not repeated here.
type keyMap struct {
	Convert    key.Binding
	ConvertAll key.Binding
	Cancel     key.Binding
	Mobile     key.Binding
	Print      key.Binding
	TOC        key.Binding
	Format     key.Binding
	NextTheme  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Convert: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "convert"),
		),
		ConvertAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "convert all"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel batch"),
		),
		Mobile: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mobile"),
		),
		Print: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "print"),
		),
		TOC: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toc"),
		),
		Format: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "html/pdf"),
		),
		NextTheme: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next theme"),
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

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Convert, k.ConvertAll, k.Cancel, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Convert, k.ConvertAll, k.Cancel},
		{k.Mobile, k.Print, k.TOC, k.Format},
		{k.NextTheme, k.Help, k.Quit},
	}
}
