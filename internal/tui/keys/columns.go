package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type columns struct {
	Toggle   key.Binding
	Next     key.Binding
	Previous key.Binding
	Narrow   key.Binding
	Widen    key.Binding
	Collapse key.Binding
}

// Columns are keys for manipulating the table's columns.
var Columns = columns{
	Toggle: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "collapse/expand column"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab", "next column"),
	),
	Previous: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab", "previous column"),
	),
	Narrow: key.NewBinding(
		key.WithKeys("<", "-"),
		key.WithHelp("<", "narrow column"),
	),
	Widen: key.NewBinding(
		key.WithKeys(">", "+"),
		key.WithHelp(">", "widen column"),
	),
	Collapse: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "collapse/expand selected"),
	),
}
