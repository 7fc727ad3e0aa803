// Package collapse hides and restores logical columns, preserving their widths.
package collapse

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/events"
	"github.com/leg100/rtable/internal/geometry"
	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/widths"
	"golang.org/x/exp/maps"
)

const (
	CollapseGlyph = "-"
	ExpandGlyph   = "+"

	// DefaultPlaceholderWidth is the width of a placeholder cell.
	DefaultPlaceholderWidth = 3

	// snapshotTolerance is the difference between the stored and rendered
	// widths below which the stored width is left alone when collapsing.
	snapshotTolerance = 0.5
)

// ErrColumnResizing is returned when toggling a column whose header cell is
// being resized.
var ErrColumnResizing = errors.New("column is being resized")

// Guard reports the column currently being resized, if any.
type Guard interface {
	Resizing() (col int, ok bool)
}

// Record holds the cells hidden when a column was collapsed, and any
// placeholders shown in their place.
type Record struct {
	Column      int
	HeaderCell  int
	Header      *dom.Cell
	Cells       []*dom.Cell
	Placeholder []*dom.Cell
	// HeaderPlaceholder is shown in place of the header cell, if any.
	HeaderPlaceholder *dom.Cell
}

type Options struct {
	Table  *dom.Table
	Header *dom.Row
	Layout geometry.Layout
	Store  *widths.Store
	Bus    *events.Bus
	Guard  Guard

	// Placeholders, if true, shows a narrow placeholder in place of each cell
	// of a collapsed column.
	Placeholders     bool
	PlaceholderWidth float64

	Writes   sched.WritePolicy
	Measurer dom.Measurer
	Logger   logging.Interface
}

// Controller toggles logical columns between visible and collapsed.
type Controller struct {
	Options

	records map[int]*Record
}

func New(opts Options) *Controller {
	if opts.PlaceholderWidth <= 0 {
		opts.PlaceholderWidth = DefaultPlaceholderWidth
	}
	if opts.Writes == nil {
		opts.Writes = sched.Immediate{}
	}
	if opts.Measurer == nil {
		opts.Measurer = dom.Rendered
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	return &Controller{
		Options: opts,
		records: make(map[int]*Record),
	}
}

// Attach registers the controller's click listener on a toggle.
func (c *Controller) Attach(toggle *dom.Element) {
	toggle.AddEventListener(dom.Click, c.onClick)
}

func (c *Controller) onClick(ev *dom.Event) {
	ev.PreventDefault()
	// Stop the click reaching the document, where it might otherwise be
	// taken as part of a resize.
	ev.StopPropagation()
	if _, err := c.Toggle(ev.Target.Column); err != nil {
		c.Logger.Warn("toggling column", "column", ev.Target.Column, "error", err)
	}
}

// Toggle collapses the column if it is visible, or expands it if it is
// collapsed. Returns the column's new collapsed state.
func (c *Controller) Toggle(col int) (bool, error) {
	if c.Store.Collapsed(col) {
		_, err := c.Expand(col)
		return false, err
	}
	_, err := c.Collapse(col)
	return err == nil, err
}

// Record returns the collapse record for the column.
func (c *Controller) Record(col int) (*Record, bool) {
	r, ok := c.records[col]
	return r, ok
}

// Collapsed returns the collapsed columns in ascending order.
func (c *Controller) Collapsed() []int {
	cols := maps.Keys(c.records)
	slices.Sort(cols)
	return cols
}

func (c *Controller) check(col int) (int, error) {
	if col < 0 || col >= c.Store.Len() {
		return -1, fmt.Errorf("%w: %d (columns: %d)", widths.ErrColumnOutOfRange, col, c.Store.Len())
	}
	return c.Layout.HeaderFor(col), nil
}

// Collapse hides the column, returning false if it is already collapsed.
//
// The header cell hidden is the one covering the column. If that cell spans
// several columns the cell is hidden but only this column's body cells are.
func (c *Controller) Collapse(col int) (bool, error) {
	headerIndex, err := c.check(col)
	if err != nil {
		return false, err
	}
	if c.Store.Collapsed(col) {
		return false, nil
	}
	if c.Guard != nil {
		if resizing, ok := c.Guard.Resizing(); ok && c.Layout.HeaderFor(resizing) == headerIndex {
			return false, fmt.Errorf("%w: %d", ErrColumnResizing, col)
		}
	}
	header := c.Header.Cells[headerIndex]

	// Snapshot the rendered width so that expanding restores the width the
	// column had immediately before collapsing. While writes are queued the
	// document lags the store, and the stored width is the newer one.
	if c.pending() {
		c.Logger.Debug("keeping stored width: document writes pending", "column", col)
	} else {
		c.snapshot(col, header)
	}

	record := &Record{
		Column:     col,
		HeaderCell: headerIndex,
		Header:     header,
	}
	for _, row := range c.Table.Rows() {
		if row == c.Header || col >= len(row.Cells) {
			continue
		}
		record.Cells = append(record.Cells, row.Cells[col])
	}
	c.records[col] = record
	_ = c.Store.SetCollapsed(col, true)

	c.Writes.Write(func() { c.hide(record) })

	width, _ := c.Store.Get(col)
	c.Logger.Debug("collapsed column", "column", col, "width", width)
	events.Emit(c.Bus, events.ColumnCollapse, events.CollapsePayload{Column: col, Width: width})
	return true, nil
}

func (c *Controller) snapshot(col int, header *dom.Cell) {
	rendered := c.Measurer.Measure(header) / float64(header.Span())
	stored, err := c.Store.Get(col)
	if err == nil && math.Abs(stored-rendered) <= snapshotTolerance {
		return
	}
	if dom.ValidWidth(rendered) && rendered > 0 {
		c.Logger.Debug("storing width before collapse", "column", col, "width", rendered, "previous", stored)
		_, _ = c.Store.Set(col, rendered)
	}
}

// pending reports whether document writes are queued but not yet made.
func (c *Controller) pending() bool {
	p, ok := c.Writes.(interface{ Pending() bool })
	return ok && p.Pending()
}

func (c *Controller) hide(r *Record) {
	r.Header.Style.Hidden = true
	for _, cell := range r.Cells {
		cell.Style.Hidden = true
	}
	if c.Placeholders {
		ph := c.placeholder()
		ph.Text = ExpandGlyph
		toggle := &dom.Element{
			Kind:       dom.ToggleElement,
			Class:      "rt-placeholder-toggle",
			Column:     r.Column,
			HeaderCell: r.HeaderCell,
			Label:      ExpandGlyph,
			Title:      "Expand column " + c.name(r),
			Width:      1,
		}
		ph.Append(toggle)
		c.Attach(toggle)
		r.Header.Placeholder = ph
		r.HeaderPlaceholder = ph
		r.Placeholder = append(r.Placeholder, ph)
		for _, cell := range r.Cells {
			ph := c.placeholder()
			cell.Placeholder = ph
			r.Placeholder = append(r.Placeholder, ph)
		}
	}
	c.setToggle(r, ExpandGlyph, "Expand column ")
}

func (c *Controller) placeholder() *dom.Cell {
	return &dom.Cell{Style: dom.Style{Width: c.PlaceholderWidth}}
}

// Expand restores the column, returning false if it is not collapsed.
func (c *Controller) Expand(col int) (bool, error) {
	if _, err := c.check(col); err != nil {
		return false, err
	}
	record, ok := c.records[col]
	if !ok {
		c.Logger.Debug("column is not collapsed", "column", col)
		return false, nil
	}
	delete(c.records, col)
	_ = c.Store.SetCollapsed(col, false)

	c.Writes.Write(func() { c.show(record) })

	width, _ := c.Store.Get(col)
	c.Logger.Debug("expanded column", "column", col, "width", width)
	events.Emit(c.Bus, events.ColumnExpand, events.ExpandPayload{Column: col, Width: width})
	return true, nil
}

func (c *Controller) show(r *Record) {
	for _, ph := range r.Placeholder {
		for _, e := range slices.Clone(ph.Elements) {
			ph.Remove(e)
		}
	}
	r.Placeholder = nil
	r.HeaderPlaceholder = nil
	for _, cell := range r.Cells {
		cell.Placeholder = nil
		cell.Style.Hidden = false
	}
	c.setToggle(r, CollapseGlyph, "Collapse column ")

	// The header cell stays hidden while another column of its span is
	// collapsed.
	if other := c.sharing(r.HeaderCell); other != nil {
		r.Header.Placeholder = other.HeaderPlaceholder
		return
	}
	r.Header.Placeholder = nil
	r.Header.Style.Hidden = false
	r.Header.Style.Width = c.Layout.SpanWidth(r.HeaderCell, c.Store.Lookup, c.Measurer.Measure(r.Header), nil)
}

// sharing returns the record of a collapsed column belonging to the header
// cell, or nil if there is none.
func (c *Controller) sharing(headerIndex int) *Record {
	for _, col := range c.Collapsed() {
		if r := c.records[col]; r.HeaderCell == headerIndex {
			return r
		}
	}
	return nil
}

// ExpandAll restores every collapsed column.
func (c *Controller) ExpandAll() {
	for _, col := range c.Collapsed() {
		_, _ = c.Expand(col)
	}
}

func (c *Controller) setToggle(r *Record, glyph, title string) {
	for _, e := range r.Header.Elements {
		if e.Kind == dom.ToggleElement {
			e.Label = glyph
			e.Title = title + c.name(r)
		}
	}
}

func (c *Controller) name(r *Record) string {
	if name := strings.TrimSpace(r.Header.Text); name != "" {
		return name
	}
	return strconv.Itoa(r.Column + 1)
}
