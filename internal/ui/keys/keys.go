package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the task list bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	New      key.Binding
	Advance  key.Binding
	Priority key.Binding
	Delete   key.Binding
	Search   key.Binding
	Status   key.Binding
	Filter   key.Binding
	Sort     key.Binding
	Order    key.Binding
	Refresh  key.Binding
	Enter    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPage: key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
		New:      key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Advance:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "advance status")),
		Priority: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "cycle priority")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Filter:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort field")),
		Order:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "sort order")),
		Refresh:  key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Advance, k.Delete, k.Search, k.Status, k.Filter, k.Sort, k.Quit}
}
