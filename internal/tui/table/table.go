// Package table renders a resizable table and maps screen positions back to
// the elements injected into its header.
package table

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leg100/go-runewidth"
	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/leg100/rtable/internal/tui"
)

const (
	// Tail appended to truncated text.
	ellipsis = "…"
	// Rendered at the right edge of a resize handle.
	handleGlyph = "│"
	// Rendered in place of a collapsed body cell.
	placeholderGlyph = "┆"
)

var (
	headerStyle         = tui.Bold.Copy()
	selectedHeaderStyle = tui.Bold.Copy().Foreground(tui.Pink)
	toggleStyle         = tui.Bold.Copy().Foreground(tui.Blue)
	handleStyle         = tui.Regular.Copy().Foreground(tui.LightGrey)
	activeHandleStyle   = tui.Bold.Copy().Foreground(tui.Pink)
	placeholderStyle    = tui.Regular.Copy().Foreground(tui.LightGrey)
	selectedCellStyle   = tui.Regular.Copy().
				Background(tui.SelectedBackground).
				Foreground(tui.SelectedForeground)
)

// Region is a horizontal span of the header line occupied by an element,
// from Start up to but not including End.
type Region struct {
	Start, End int
	Element    *dom.Element
}

// View is a rendered table.
type View struct {
	Header string
	Rows   []string
	// Width is the number of cells occupied by each line.
	Width   int
	Regions []Region
}

// HitTest returns the header element at position x.
func (v View) HitTest(x int) (*dom.Element, bool) {
	for _, r := range v.Regions {
		if x >= r.Start && x < r.End {
			return r.Element, true
		}
	}
	return nil, false
}

// String renders the header followed by the body rows.
func (v View) String() string {
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{v.Header}, v.Rows...)...)
}

// Options for rendering.
type Options struct {
	// Selected is the selected logical column; -1 selects none.
	Selected int
	// HandleWidth is the number of cells occupied by a resize handle.
	HandleWidth int
}

type column struct {
	index     int
	width     int
	collapsed bool
}

type renderer struct {
	table   *resizable.Table
	opts    Options
	body    []*dom.Row
	x       int
	header  []string
	rows    [][]string
	regions []Region
}

// Render renders the table. A destroyed table renders nothing.
func Render(t *resizable.Table, opts Options) View {
	if t.Destroyed() {
		return View{}
	}
	r := &renderer{table: t, opts: opts}
	for _, row := range t.Document().Body {
		// the header may have been taken from the body
		if row != t.Header() {
			r.body = append(r.body, row)
		}
	}
	r.rows = make([][]string, len(r.body))

	for i, cell := range t.Header().Cells {
		r.segment(i, cell)
	}

	view := View{
		Header:  strings.Join(r.header, ""),
		Width:   r.x,
		Regions: r.regions,
	}
	for _, parts := range r.rows {
		view.Rows = append(view.Rows, strings.Join(parts, ""))
	}
	return view
}

// segment renders a header cell and the body cells beneath it.
func (r *renderer) segment(headerIndex int, cell *dom.Cell) {
	cfg := r.table.Config()
	span := r.table.Layout().Spans[headerIndex]

	var (
		cols    []column
		fixed   int
		weights []float64
	)
	for col := span.First; col <= span.Last; col++ {
		state, err := r.table.GetColumnState(col)
		if err != nil {
			return
		}
		c := column{index: col, collapsed: state.Collapsed}
		if state.Collapsed {
			if cfg.UsePlaceholdersForCollapse {
				c.width = cells(cfg.PlaceholderWidth)
			}
			fixed += c.width
		} else {
			weights = append(weights, state.StoredWidth)
		}
		cols = append(cols, c)
	}

	if cell.Style.Hidden {
		// Each visible column keeps its own width.
		for i := range cols {
			if !cols[i].collapsed {
				state, _ := r.table.GetColumnState(cols[i].index)
				cols[i].width = cells(state.StoredWidth)
			}
		}
		r.hiddenHeader(cell, cols)
	} else {
		total := max(cells(cell.Style.Width), fixed+len(weights))
		distribute(cols, weights, total-fixed)
		r.visibleHeader(cell, total)
	}
	for i, row := range r.body {
		for _, c := range cols {
			r.rows[i] = append(r.rows[i], r.bodyCell(row, c))
		}
	}
	for _, c := range cols {
		r.x += c.width
	}
}

// distribute shares width among the uncollapsed columns in proportion to
// their weights.
func distribute(cols []column, weights []float64, width int) {
	var total float64
	for _, w := range weights {
		total += w
	}
	var (
		cum  float64
		prev int
		k    int
	)
	for i := range cols {
		if cols[i].collapsed {
			continue
		}
		if total > 0 {
			cum += weights[k]
		} else {
			cum++
		}
		end := width
		if k < len(weights)-1 {
			if total > 0 {
				end = int(math.Round(cum / total * float64(width)))
			} else {
				end = int(math.Round(cum / float64(len(weights)) * float64(width)))
			}
		}
		cols[i].width = end - prev
		prev = end
		k++
	}
}

func (r *renderer) visibleHeader(cell *dom.Cell, width int) {
	var toggle, handle *dom.Element
	for _, e := range cell.Elements {
		switch e.Kind {
		case dom.ToggleElement:
			toggle = e
		case dom.HandleElement:
			handle = e
		}
	}
	var (
		b         strings.Builder
		remaining = width
	)
	handleWidth := 0
	if handle != nil {
		handleWidth = min(max(r.opts.HandleWidth, 1), remaining)
		remaining -= handleWidth
	}
	if toggle != nil && remaining >= 2 {
		b.WriteString(toggleStyle.Render(toggle.Label))
		b.WriteString(" ")
		r.regions = append(r.regions, Region{Start: r.x, End: r.x + 1, Element: toggle})
		remaining -= 2
	}
	style := headerStyle
	if r.containsSelected(cell) {
		style = selectedHeaderStyle
	}
	var title string
	if remaining > 0 {
		title = runewidth.Truncate(cell.Text, remaining, ellipsis)
	}
	b.WriteString(style.Render(title))
	b.WriteString(strings.Repeat(" ", max(0, remaining-runewidth.StringWidth(title))))
	if handle != nil {
		style := handleStyle
		if handle.Active {
			style = activeHandleStyle
		}
		b.WriteString(strings.Repeat(" ", handleWidth-1))
		b.WriteString(style.Render(handleGlyph))
		start := r.x + width - handleWidth
		r.regions = append(r.regions, Region{Start: start, End: start + handleWidth, Element: handle})
	}
	r.header = append(r.header, b.String())
}

func (r *renderer) hiddenHeader(cell *dom.Cell, cols []column) {
	x := r.x
	var b strings.Builder
	for _, c := range cols {
		if c.collapsed && cell.Placeholder != nil && c.width > 0 {
			var toggle *dom.Element
			for _, e := range cell.Placeholder.Elements {
				if e.Kind == dom.ToggleElement {
					toggle = e
				}
			}
			if toggle != nil {
				b.WriteString(toggleStyle.Render(toggle.Label))
				b.WriteString(strings.Repeat(" ", c.width-1))
				r.regions = append(r.regions, Region{Start: x, End: x + 1, Element: toggle})
			} else {
				b.WriteString(strings.Repeat(" ", c.width))
			}
		} else {
			b.WriteString(strings.Repeat(" ", c.width))
		}
		x += c.width
	}
	r.header = append(r.header, b.String())
}

func (r *renderer) bodyCell(row *dom.Row, c column) string {
	if c.width == 0 {
		return ""
	}
	if c.collapsed {
		return placeholderStyle.Render(placeholderGlyph + strings.Repeat(" ", c.width-1))
	}
	var text string
	if c.index < len(row.Cells) {
		text = row.Cells[c.index].Text
	}
	// leave a space between columns
	truncated := TruncateRight(text, c.width-1, ellipsis)
	rendered := lipgloss.NewStyle().
		Width(c.width).
		MaxWidth(c.width).
		Inline(true).
		Render(truncated)
	if c.index == r.opts.Selected {
		return selectedCellStyle.Render(rendered)
	}
	return rendered
}

func (r *renderer) containsSelected(cell *dom.Cell) bool {
	for i, c := range r.table.Header().Cells {
		if c == cell {
			return r.table.Layout().Spans[i].Contains(r.opts.Selected)
		}
	}
	return false
}

// cells converts a width to a whole number of terminal cells.
func cells(w float64) int {
	if math.IsNaN(w) || w <= 0 {
		return 0
	}
	return int(math.Round(w))
}
