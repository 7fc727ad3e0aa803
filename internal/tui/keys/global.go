package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type global struct {
	Reload key.Binding
	Quit   key.Binding
	Help   key.Binding
}

var Global = global{
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload widths"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}
