package tui

import "github.com/charmbracelet/bubbles/key"

// browseKeys holds key bindings for browse mode.
type browseKeys struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Search  key.Binding
	Sort    key.Binding
	Group   key.Binding
	History key.Binding
	Import  key.Binding
	Remove  key.Binding
	Export  key.Binding
	Log     key.Binding
	Quit    key.Binding
}

// ShortHelp returns the most useful browse bindings for the help bar.
func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Search, k.Log, k.Quit}
}

// FullHelp returns the browse bindings grouped for expanded help.
func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Edit, k.Delete},
		{k.Search, k.Sort, k.Group, k.History},
		{k.Import, k.Remove, k.Export, k.Log, k.Quit},
	}
}

func newBrowseKeys() browseKeys {
	return browseKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort a-z")),
		Group:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group by initial")),
		History: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "update history")),
		Import:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import csv")),
		Remove:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "batch delete csv")),
		Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
		Log:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "audit log")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// viewKeys holds key bindings for the scrollable viewer.
type viewKeys struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
}

// ShortHelp returns the viewer bindings for the help bar.
func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back}
}

// FullHelp returns the viewer bindings grouped for expanded help.
func (k viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Back}}
}

func newViewKeys() viewKeys {
	return viewKeys{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		Back: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
	}
}
