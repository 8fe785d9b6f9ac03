package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	Enter         key.Binding
	Back          key.Binding
	Refresh       key.Binding
	Session       key.Binding
	Toggle        key.Binding
	SelectAll     key.Binding
	SelectNone    key.Binding
	Rebuild       key.Binding
	RebuildByFile key.Binding
	WorkQueue     key.Binding
	Export        key.Binding
	Yank          key.Binding
	Search        key.Binding
	SearchBack    key.Binding
	NextMatch     key.Binding
	PrevMatch     key.Binding
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Home          key.Binding
	End           key.Binding
}

var Keys = KeyMap{
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh:       key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rescan")),
	Session:       key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab", "session")),
	Toggle:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check/uncheck")),
	SelectAll:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "check all")),
	SelectNone:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "uncheck all")),
	Rebuild:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rebuild checked")),
	RebuildByFile: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "rebuild by dockerfile")),
	WorkQueue:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work queue")),
	Export:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export log")),
	Yank:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy build cmd")),
	Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	SearchBack:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "search back")),
	NextMatch:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
	PrevMatch:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
	Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "scroll left")),
	Right:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "scroll right")),
	PageUp:        key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:      key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Home:          key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "top")),
	End:           key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "bottom")),
}
