// Package dom models the host document the column engine operates on: a table
// with a head and body section, header cells that may span several columns,
// and elements injected into header cells by the engine.
package dom

import (
	"math"

	"github.com/leg100/go-runewidth"
)

// cellPadding is the horizontal padding either side of a cell's content.
const cellPadding = 1

// Table is a table-like structure: zero or more head rows followed by zero or
// more body rows.
type Table struct {
	ID   string
	Head []*Row
	Body []*Row

	listeners registry
}

// Row is a sequence of cells.
type Row struct {
	Cells []*Cell
}

// Cell is a header or body cell.
type Cell struct {
	Text    string
	ColSpan int
	Style   Style

	// Placeholder is a substitute rendered in place of the cell while the cell
	// is hidden. It does not occupy an index in the row, so sibling indices
	// are unaffected by its presence.
	Placeholder *Cell

	// Elements injected into the cell.
	Elements []*Element
}

// Style holds the mutable presentation of a cell.
type Style struct {
	// Width is the explicit width of the cell. Zero means auto, i.e. sized to
	// content.
	Width float64
	// Hidden removes the cell from the rendered output.
	Hidden bool
}

// NewRow constructs a row of single-span cells from the given texts.
func NewRow(texts ...string) *Row {
	row := &Row{Cells: make([]*Cell, len(texts))}
	for i, text := range texts {
		row.Cells[i] = &Cell{Text: text}
	}
	return row
}

// Span returns the number of logical columns the cell covers. A missing or
// invalid span counts as one.
func (c *Cell) Span() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// NaturalWidth is the width of the cell's content including padding.
func (c *Cell) NaturalWidth() float64 {
	return float64(runewidth.StringWidth(c.Text) + 2*cellPadding)
}

// RenderedWidth is the width the cell currently occupies: zero if hidden, its
// explicit width if set, otherwise its natural width.
func (c *Cell) RenderedWidth() float64 {
	switch {
	case c.Style.Hidden:
		return 0
	case c.Style.Width > 0:
		return c.Style.Width
	default:
		return c.NaturalWidth()
	}
}

// Append injects an element into the cell.
func (c *Cell) Append(e *Element) {
	e.parent = c
	c.Elements = append(c.Elements, e)
}

// Remove removes an injected element from the cell, along with any listeners
// registered on it. Returns false if the element is not a child of the cell.
func (c *Cell) Remove(e *Element) bool {
	for i, child := range c.Elements {
		if child == e {
			c.Elements = append(c.Elements[:i], c.Elements[i+1:]...)
			e.parent = nil
			e.listeners.clear()
			return true
		}
	}
	return false
}

// HeaderRow returns the row used as the header: the first head row, or if
// there is no head section, the first body row. The second return value
// reports whether the header was taken from the body.
func (t *Table) HeaderRow() (row *Row, fromBody bool) {
	if len(t.Head) > 0 {
		return t.Head[0], false
	}
	if len(t.Body) > 0 {
		return t.Body[0], true
	}
	return nil, false
}

// Rows returns every row in the table, head rows first.
func (t *Table) Rows() []*Row {
	rows := make([]*Row, 0, len(t.Head)+len(t.Body))
	rows = append(rows, t.Head...)
	return append(rows, t.Body...)
}

// Elements returns every element injected into any cell of the table.
func (t *Table) Elements() []*Element {
	var elements []*Element
	for _, row := range t.Rows() {
		for _, cell := range row.Cells {
			elements = append(elements, cell.Elements...)
		}
	}
	return elements
}

// Measurer reads the rendered width of a cell.
type Measurer interface {
	Measure(c *Cell) float64
}

// MeasureFunc adapts a func to a Measurer.
type MeasureFunc func(c *Cell) float64

func (f MeasureFunc) Measure(c *Cell) float64 { return f(c) }

// Rendered measures cells using their rendered width.
var Rendered Measurer = MeasureFunc((*Cell).RenderedWidth)

// ValidWidth reports whether w is a usable width: finite and non-negative.
func ValidWidth(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0
}
