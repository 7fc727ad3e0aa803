// Package geometry maps header cells, which may span several logical columns,
// onto a flat sequence of logical column widths.
package geometry

import (
	"errors"
	"fmt"

	"github.com/leg100/rtable/internal/dom"
)

var (
	ErrNoHeader  = errors.New("no header row found")
	ErrNoColumns = errors.New("no columns found in header row")
)

// MeasureError is returned when a header cell reports an unusable width.
type MeasureError struct {
	Cell  int
	Width float64
}

func (e *MeasureError) Error() string {
	return fmt.Sprintf("header cell %d: invalid measured width: %v", e.Cell, e.Width)
}

// Span is the inclusive range of logical columns covered by a header cell.
type Span struct {
	First, Last int
}

// Len returns the number of logical columns in the span.
func (s Span) Len() int { return s.Last - s.First + 1 }

// Contains reports whether the logical column falls within the span.
func (s Span) Contains(col int) bool { return col >= s.First && col <= s.Last }

// Layout is the result of resolving a header row.
type Layout struct {
	// ColumnCount is the number of logical columns, i.e. the sum of the
	// header cells' spans.
	ColumnCount int
	// Widths is the initial width of each logical column.
	Widths []float64
	// Spans holds the logical columns covered by each header cell, indexed by
	// header cell.
	Spans []Span
}

// Resolve walks the header cells left to right, assigning each logical column
// covered by a cell an equal share of the cell's measured width.
//
// The width of an individual column within a span cannot be determined from
// the span's rendered width, so the proportional split is an approximation.
func Resolve(header *dom.Row, m dom.Measurer) (Layout, error) {
	if header == nil {
		return Layout{}, ErrNoHeader
	}
	var layout Layout
	for _, cell := range header.Cells {
		layout.ColumnCount += cell.Span()
	}
	if layout.ColumnCount == 0 {
		return Layout{}, ErrNoColumns
	}
	layout.Widths = make([]float64, 0, layout.ColumnCount)
	layout.Spans = make([]Span, 0, len(header.Cells))

	var cursor int
	for i, cell := range header.Cells {
		w := m.Measure(cell)
		if !dom.ValidWidth(w) {
			return Layout{}, &MeasureError{Cell: i, Width: w}
		}
		span := cell.Span()
		for range span {
			layout.Widths = append(layout.Widths, w/float64(span))
		}
		layout.Spans = append(layout.Spans, Span{First: cursor, Last: cursor + span - 1})
		cursor += span
	}
	return layout, nil
}

// HeaderFor returns the index of the header cell covering the logical column,
// or -1 if the column is out of range.
func (l Layout) HeaderFor(col int) int {
	for i, span := range l.Spans {
		if span.Contains(col) {
			return i
		}
	}
	return -1
}

// HandleTarget returns the logical column resized by a handle on the given
// header cell: the last column of its span.
func (l Layout) HandleTarget(headerCell int) int {
	return l.Spans[headerCell].Last
}

// ToggleTarget returns the logical column collapsed by a toggle on the given
// header cell: the first column of its span. Only that column is collapsed,
// not every column in the span.
func (l Layout) ToggleTarget(headerCell int) int {
	return l.Spans[headerCell].First
}

// SpanWidth sums the widths of the logical columns covered by a header cell.
// Columns without a usable width are estimated as an equal share of the
// cell's measured width, and reported via the missing callback, if non-nil.
func (l Layout) SpanWidth(headerCell int, width func(col int) (float64, bool), measured float64, missing func(col int, estimate float64)) float64 {
	span := l.Spans[headerCell]
	var total float64
	for col := span.First; col <= span.Last; col++ {
		w, ok := width(col)
		if !ok {
			w = measured / float64(span.Len())
			if missing != nil {
				missing(col, w)
			}
		}
		total += w
	}
	return total
}
