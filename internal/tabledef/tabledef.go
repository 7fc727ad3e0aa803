// Package tabledef loads table definitions from YAML.
package tabledef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leg100/rtable/internal/dom"
	"gopkg.in/yaml.v3"
)

// Definition describes a table:
//
//	id: people
//	header:
//	  - title: Name
//	    width: 20
//	  - title: Contact
//	    span: 2
//	rows:
//	  - [alice, alice@example.com, "555-0100"]
type Definition struct {
	// ID identifies the table; widths are persisted under it. If empty an ID
	// is generated, in which case widths do not survive a restart.
	ID     string     `yaml:"id"`
	Header []Column   `yaml:"header"`
	Rows   [][]string `yaml:"rows"`
}

// Column is a header cell.
type Column struct {
	Title string `yaml:"title"`
	// Span is the number of logical columns the header cell covers. Defaults
	// to one.
	Span int `yaml:"span,omitempty"`
	// Width is the initial width of the header cell. Zero sizes the cell to
	// fit its title.
	Width float64 `yaml:"width,omitempty"`
}

// ColumnCount is the number of logical columns.
func (d Definition) ColumnCount() (n int) {
	for _, c := range d.Header {
		n += max(c.Span, 1)
	}
	return n
}

// Validate checks the definition describes a usable table.
func (d Definition) Validate() error {
	if len(d.Header) == 0 {
		return errors.New("header must have at least one column")
	}
	for i, c := range d.Header {
		if c.Span < 0 {
			return fmt.Errorf("header column %d: span must not be negative", i)
		}
		if c.Width < 0 {
			return fmt.Errorf("header column %d: width must not be negative", i)
		}
	}
	n := d.ColumnCount()
	for i, row := range d.Rows {
		if len(row) > n {
			return fmt.Errorf("row %d: has %d cells but table has %d columns", i, len(row), n)
		}
	}
	return nil
}

// Document builds a document from the definition. Short rows are padded with
// empty cells.
func (d Definition) Document() *dom.Table {
	header := &dom.Row{}
	for _, c := range d.Header {
		header.Cells = append(header.Cells, &dom.Cell{
			Text:    c.Title,
			ColSpan: c.Span,
			Style:   dom.Style{Width: c.Width},
		})
	}
	table := &dom.Table{
		ID:   d.ID,
		Head: []*dom.Row{header},
	}
	n := d.ColumnCount()
	for _, texts := range d.Rows {
		padded := make([]string, n)
		copy(padded, texts)
		table.Body = append(table.Body, dom.NewRow(padded...))
	}
	return table
}

// Parse parses and validates a definition.
func Parse(r io.Reader) (Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, errors.New("empty table definition")
		}
		return Definition{}, fmt.Errorf("parsing table definition: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid table definition: %w", err)
	}
	return d, nil
}

// Load reads a definition from the file at path.
func Load(path string) (Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	d, err := Parse(bytes.NewReader(b))
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Demo returns the built-in table shown when no definition is given.
func Demo() Definition {
	return Definition{
		ID: "demo",
		Header: []Column{
			{Title: "Name"},
			{Title: "Contact", Span: 2},
			{Title: "Role"},
			{Title: "Location"},
		},
		Rows: [][]string{
			{"Ada Lovelace", "ada@example.com", "555-0100", "Analyst", "London"},
			{"Grace Hopper", "grace@example.com", "555-0101", "Admiral", "Arlington"},
			{"Alan Turing", "alan@example.com", "555-0102", "Cryptanalyst", "Bletchley"},
			{"Katherine Johnson", "katherine@example.com", "555-0103", "Mathematician", "Hampton"},
			{"Edsger Dijkstra", "edsger@example.com", "555-0104", "Professor", "Austin"},
		},
	}
}
