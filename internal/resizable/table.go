// Package resizable layers column resizing and collapsing onto a table,
// persisting the widths chosen by the user.
package resizable

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leg100/rtable/internal/collapse"
	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/drag"
	"github.com/leg100/rtable/internal/events"
	"github.com/leg100/rtable/internal/geometry"
	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/widths"
)

const (
	idPrefix  = "resizable-table-"
	keyPrefix = "resizable-table-widths-"

	HandleClass = "rt-resize-handle"
	ToggleClass = "rt-collapse-toggle"
)

// Table is a table with resizable and collapsible columns.
type Table struct {
	doc *dom.Table
	cfg Config

	header *dom.Row
	layout geometry.Layout
	store  *widths.Store
	bus    *events.Bus

	drag     *drag.Controller
	collapse *collapse.Controller

	handles []*dom.Element
	toggles []*dom.Element

	persister widths.Persister
	frames    sched.FrameScheduler
	idle      sched.WritePolicy
	writes    sched.WritePolicy
	measurer  dom.Measurer
	clock     sched.Clock
	logger    logging.Interface

	initialized bool
	destroyed   bool
}

type Option func(t *Table)

// WithLogger sets the logger.
func WithLogger(logger logging.Interface) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithPersister persists column widths using the given persister.
func WithPersister(p widths.Persister) Option {
	return func(t *Table) {
		t.persister = p
	}
}

// WithFrameScheduler schedules width updates during a resize on the given
// scheduler's frames.
func WithFrameScheduler(s sched.FrameScheduler) Option {
	return func(t *Table) {
		t.frames = s
	}
}

// WithIdleWriter sets the policy used for document writes when DeferDOMWrites
// is enabled.
func WithIdleWriter(p sched.WritePolicy) Option {
	return func(t *Table) {
		t.idle = p
	}
}

// WithMeasurer sets how cell widths are measured.
func WithMeasurer(m dom.Measurer) Option {
	return func(t *Table) {
		t.measurer = m
	}
}

// WithClock sets the clock used for throttling resize updates.
func WithClock(c sched.Clock) Option {
	return func(t *Table) {
		t.clock = c
	}
}

// New constructs and initializes a resizable table. An error is returned if
// the table cannot be initialized, in which case no table is returned.
func New(doc *dom.Table, cfg Config, opts ...Option) (*Table, error) {
	if doc == nil {
		return nil, ErrNoTable
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	t := &Table{
		doc:      doc,
		cfg:      cfg,
		frames:   &sched.FrameQueue{},
		measurer: dom.Rendered,
		clock:    time.Now,
		logger:   logging.Discard,
	}
	for _, fn := range opts {
		fn(t)
	}
	if doc.ID == "" {
		doc.ID = idPrefix + uuid.NewString()
	}
	t.bus = events.NewBus(t.logger)
	cfg.Hooks.register(t.bus)

	if err := t.Init(); err != nil {
		return nil, err
	}
	return t, nil
}

// Init initializes the table. Initializing an already initialized table is a
// no-op.
func (t *Table) Init() error {
	if t.destroyed {
		return ErrDestroyed
	}
	if t.initialized {
		t.logger.Warn("table already initialized", "table", t.doc.ID)
		return nil
	}

	header, fromBody := t.doc.HeaderRow()
	if fromBody {
		t.logger.Warn("no head section found: using first body row as header", "table", t.doc.ID)
	}
	layout, err := geometry.Resolve(header, t.measurer)
	if err != nil {
		return fmt.Errorf("initializing table %s: %w", t.doc.ID, err)
	}
	t.header = header
	t.layout = layout

	t.writes = sched.Immediate{}
	if t.cfg.DeferDOMWrites {
		if t.idle != nil {
			t.writes = t.idle
		} else {
			t.logger.Warn("deferred writes enabled but no idle writer configured: writing immediately")
		}
	}

	t.store = widths.New(layout.Widths, widths.Options{
		Min:       t.cfg.MinColumnWidth,
		Max:       t.cfg.MaxColumnWidth,
		Key:       keyPrefix + t.doc.ID,
		Persister: t.persister,
		Logger:    t.logger,
	})

	// Fix each header cell at its measured width.
	for i, cell := range header.Cells {
		w := t.measurer.Measure(cell)
		cell.Style.Width = w
		t.logger.Debug("header cell", "index", i, "span", cell.Span(), "width", w)
	}

	t.drag = drag.New(drag.Options{
		Table:    t.doc,
		Header:   header,
		Layout:   layout,
		Store:    t.store,
		Bus:      t.bus,
		Frames:   t.frames,
		Writes:   t.writes,
		Clock:    t.clock,
		Interval: t.cfg.ResizeUpdateInterval,
		Measurer: t.measurer,
		Logger:   t.logger,
	})
	t.collapse = collapse.New(collapse.Options{
		Table:            t.doc,
		Header:           header,
		Layout:           layout,
		Store:            t.store,
		Bus:              t.bus,
		Guard:            t.drag,
		Placeholders:     t.cfg.UsePlaceholdersForCollapse,
		PlaceholderWidth: t.cfg.PlaceholderWidth,
		Writes:           t.writes,
		Measurer:         t.measurer,
		Logger:           t.logger,
	})

	if t.cfg.EnableResizing {
		t.createHandles()
	}
	if t.cfg.EnableCollapsing {
		t.createToggles()
	}

	restored := t.store.Restore()
	if restored {
		t.applyWidths()
	}

	t.initialized = true
	t.logger.Info("initialized table", "table", t.doc.ID, "columns", layout.ColumnCount, "restored", restored)
	events.Emit(t.bus, events.Init, events.InitPayload{
		ColumnCount: layout.ColumnCount,
		Widths:      t.store.Widths(),
		Restored:    restored,
	})
	return nil
}

func (t *Table) createHandles() {
	for i, cell := range t.header.Cells {
		if cell.Span() > 1 {
			t.logger.Debug("handle on spanned header cell resizes last column in span",
				"header_cell", i, "span", cell.Span(), "column", t.layout.HandleTarget(i))
		}
		handle := &dom.Element{
			Kind:       dom.HandleElement,
			Class:      HandleClass,
			Column:     t.layout.HandleTarget(i),
			HeaderCell: i,
			Title:      "Resize column " + title(cell, t.layout.HandleTarget(i)),
			Width:      t.cfg.ResizeHandleWidth,
		}
		cell.Append(handle)
		t.drag.Attach(handle)
		t.handles = append(t.handles, handle)
	}
}

func (t *Table) createToggles() {
	for i, cell := range t.header.Cells {
		toggle := &dom.Element{
			Kind:       dom.ToggleElement,
			Class:      ToggleClass,
			Column:     t.layout.ToggleTarget(i),
			HeaderCell: i,
			Label:      collapse.CollapseGlyph,
			Title:      "Collapse column " + title(cell, t.layout.ToggleTarget(i)),
			Width:      1,
		}
		cell.Append(toggle)
		t.collapse.Attach(toggle)
		t.toggles = append(t.toggles, toggle)
	}
}

func title(cell *dom.Cell, index int) string {
	if s := strings.TrimSpace(cell.Text); s != "" {
		return s
	}
	return fmt.Sprint(index + 1)
}

// applyWidths sets every visible header cell's width to the sum of the widths
// of the columns it spans.
func (t *Table) applyWidths() {
	for i, cell := range t.header.Cells {
		if cell.Style.Hidden {
			continue
		}
		w := t.layout.SpanWidth(i, t.store.Lookup, t.measurer.Measure(cell), func(col int, estimate float64) {
			t.logger.Warn("missing width for column: using measured width", "column", col, "estimate", estimate)
		})
		if w > 0 {
			cell.Style.Width = w
		}
	}
}

func (t *Table) usable() error {
	switch {
	case t.destroyed:
		return ErrDestroyed
	case !t.initialized:
		return ErrNotInitialized
	}
	return nil
}

func (t *Table) checkIndex(col int) error {
	if col < 0 || col >= t.layout.ColumnCount {
		return &IndexError{Index: col, Count: t.layout.ColumnCount}
	}
	return nil
}

// ToggleColumn collapses the column if visible, or expands it if collapsed.
func (t *Table) ToggleColumn(col int) error {
	if err := t.usable(); err != nil {
		return err
	}
	if !t.cfg.EnableCollapsing {
		return ErrCollapsingDisabled
	}
	if err := t.checkIndex(col); err != nil {
		return err
	}
	_, err := t.collapse.Toggle(col)
	return err
}

// SetColumnWidth sets the column's width, clamped to the configured bounds,
// and returns the width applied.
func (t *Table) SetColumnWidth(col int, width float64) (float64, error) {
	if err := t.usable(); err != nil {
		return 0, err
	}
	if err := t.checkIndex(col); err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(width) || math.IsInf(width, 0):
		return 0, ErrInvalidWidth
	case width < 0:
		return 0, ErrNegativeWidth
	}
	applied, err := t.store.Set(col, width)
	if err != nil {
		return 0, err
	}
	if !t.store.Collapsed(col) {
		headerIndex := t.layout.HeaderFor(col)
		header := t.header.Cells[headerIndex]
		t.writes.Write(func() {
			header.Style.Width = t.layout.SpanWidth(headerIndex, t.store.Lookup, t.measurer.Measure(header), nil)
		})
	}
	_ = t.store.Persist()

	events.Emit(t.bus, events.ColumnWidthSet, events.WidthSetPayload{
		Column:    col,
		Requested: width,
		Width:     applied,
	})
	return applied, nil
}

// Save persists the current widths.
func (t *Table) Save() error {
	if err := t.usable(); err != nil {
		return err
	}
	return t.store.Persist()
}

// ColumnState is a snapshot of a column's state.
type ColumnState struct {
	Index int
	// HeaderCell is the index of the header cell covering the column.
	HeaderCell int
	// StoredWidth is the column's recorded width, or zero if unknown.
	StoredWidth float64
	// RenderedWidth is the column's share of its header cell's current width.
	RenderedWidth float64
	Collapsed     bool
	Visible       bool
	MinWidth      float64
	MaxWidth      float64
}

// GetColumnState returns a snapshot of the column's state.
func (t *Table) GetColumnState(col int) (ColumnState, error) {
	if err := t.usable(); err != nil {
		return ColumnState{}, err
	}
	if err := t.checkIndex(col); err != nil {
		return ColumnState{}, err
	}
	headerIndex := t.layout.HeaderFor(col)
	header := t.header.Cells[headerIndex]
	stored, _ := t.store.Lookup(col)
	lo, hi := t.store.Bounds()
	return ColumnState{
		Index:         col,
		HeaderCell:    headerIndex,
		StoredWidth:   stored,
		RenderedWidth: t.measurer.Measure(header) / float64(header.Span()),
		Collapsed:     t.store.Collapsed(col),
		Visible:       !header.Style.Hidden,
		MinWidth:      lo,
		MaxWidth:      hi,
	}, nil
}

// Reload re-applies persisted widths, if any. Returns true if widths were
// restored.
func (t *Table) Reload() (bool, error) {
	if err := t.usable(); err != nil {
		return false, err
	}
	if _, ok := t.drag.Resizing(); ok {
		return false, ErrColumnResizing
	}
	if !t.store.Restore() {
		return false, nil
	}
	t.applyWidths()
	return true, nil
}

// ResizeActive returns the column being resized, if any.
func (t *Table) ResizeActive() (int, bool) {
	if t.drag == nil {
		return -1, false
	}
	return t.drag.Resizing()
}

// CancelResize aborts any resize in progress.
func (t *Table) CancelResize() {
	if t.drag != nil {
		t.drag.Cancel()
	}
}

// Destroy removes every element and listener added to the document, restores
// collapsed columns, and leaves the table unusable.
func (t *Table) Destroy() error {
	if err := t.usable(); err != nil {
		return err
	}
	events.Emit(t.bus, events.BeforeDestroy, events.DestroyPayload{ColumnCount: t.layout.ColumnCount})

	t.drag.Cancel()
	t.collapse.ExpandAll()
	if q, ok := t.writes.(interface{ Drain() int }); ok {
		q.Drain()
	}
	for _, e := range append(t.handles, t.toggles...) {
		if parent := e.Parent(); parent != nil {
			parent.Remove(e)
		}
	}
	t.handles = nil
	t.toggles = nil
	t.bus.Clear()
	t.destroyed = true

	t.logger.Info("destroyed table", "table", t.doc.ID)
	return nil
}

// Destroyed reports whether the table has been destroyed.
func (t *Table) Destroyed() bool { return t.destroyed }

// ID returns the table's identity.
func (t *Table) ID() string { return t.doc.ID }

// Document returns the underlying document.
func (t *Table) Document() *dom.Table { return t.doc }

// Header returns the header row.
func (t *Table) Header() *dom.Row { return t.header }

// Layout returns the header geometry.
func (t *Table) Layout() geometry.Layout { return t.layout }

// ColumnCount returns the number of logical columns.
func (t *Table) ColumnCount() int { return t.layout.ColumnCount }

// Widths returns a copy of every column's stored width.
func (t *Table) Widths() []float64 { return t.store.Widths() }

// Bus returns the table's event bus, on which the host can register handlers
// with events.On.
func (t *Table) Bus() *events.Bus { return t.bus }

// Off removes handlers from the named event; with no ids every handler for
// the event is removed.
func (t *Table) Off(name events.Name, ids ...events.HandlerID) {
	t.bus.Off(name, ids...)
}

// Handles returns the resize handles added to the header.
func (t *Table) Handles() []*dom.Element { return t.handles }

// Toggles returns the collapse toggles added to the header.
func (t *Table) Toggles() []*dom.Element { return t.toggles }

// Config returns the table's configuration.
func (t *Table) Config() Config { return t.cfg }
