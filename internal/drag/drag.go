// Package drag turns pointer input on resize handles into column widths.
package drag

import (
	"time"

	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/events"
	"github.com/leg100/rtable/internal/geometry"
	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/widths"
)

// Session is the state of an in-progress resize. A controller with no session
// is idle.
type Session struct {
	Column     int
	HeaderCell int
	Handle     *dom.Element

	OriginX       float64
	LastX         float64
	WidthAtOrigin float64
	Touch         bool

	// FrameScheduled is true while an update is waiting for a frame.
	FrameScheduled bool

	listeners []listener
}

type listener struct {
	typ dom.EventType
	id  dom.ListenerID
}

type Options struct {
	Table  *dom.Table
	Header *dom.Row
	Layout geometry.Layout
	Store  *widths.Store
	Bus    *events.Bus

	Frames sched.FrameScheduler
	Writes sched.WritePolicy
	Clock  sched.Clock
	// Interval is the minimum time between width updates while dragging.
	// Zero bounds updates only by the frame rate.
	Interval time.Duration

	Measurer dom.Measurer
	Logger   logging.Interface
}

// Controller is the resize state machine: idle until a handle is pressed,
// dragging until the pointer is released or the drag is cancelled.
type Controller struct {
	Options

	session    *Session
	lastUpdate time.Time
}

func New(opts Options) *Controller {
	if opts.Writes == nil {
		opts.Writes = sched.Immediate{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Measurer == nil {
		opts.Measurer = dom.Rendered
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	return &Controller{Options: opts}
}

// Attach registers the controller's press listeners on a handle.
func (c *Controller) Attach(handle *dom.Element) {
	handle.AddEventListener(dom.MouseDown, c.onMouseDown)
	handle.AddEventListener(dom.TouchStart, c.onTouchStart)
}

// Session returns the active session, or nil if idle.
func (c *Controller) Session() *Session {
	return c.session
}

// Resizing returns the column being resized, or false if idle.
func (c *Controller) Resizing() (int, bool) {
	if c.session == nil {
		return -1, false
	}
	return c.session.Column, true
}

func (c *Controller) onMouseDown(ev *dom.Event) {
	ev.PreventDefault()
	c.Start(ev.Target, ev.X, false)
}

func (c *Controller) onTouchStart(ev *dom.Event) {
	if ev.Touches > 1 {
		// multi-touch gestures are not resizes
		return
	}
	ev.PreventDefault()
	c.Start(ev.Target, ev.X, true)
}

// Start begins a resize from the given handle at pointer position x. It is a
// no-op returning false if a resize is already in progress or the handle's
// column cannot be resized.
func (c *Controller) Start(handle *dom.Element, x float64, touch bool) bool {
	if c.session != nil {
		c.Logger.Debug("ignoring resize start: resize already in progress", "column", c.session.Column)
		return false
	}
	if handle == nil || handle.HeaderCell < 0 || handle.HeaderCell >= len(c.Header.Cells) {
		c.Logger.Error("invalid resize handle")
		return false
	}
	col := handle.Column
	if col < 0 || col >= c.Store.Len() {
		c.Logger.Error("invalid resize handle column", "column", col)
		return false
	}
	if c.Store.Collapsed(col) {
		c.Logger.Warn("ignoring resize start: column is collapsed", "column", col)
		return false
	}
	header := c.Header.Cells[handle.HeaderCell]

	width, err := c.Store.Get(col)
	if err != nil {
		// Estimate from the header cell's share of its span.
		width = c.Measurer.Measure(header) / float64(header.Span())
		c.Logger.Warn("no usable width for column: estimating from header cell",
			"column", col, "header_cell", handle.HeaderCell, "estimate", width)
	}

	s := &Session{
		Column:        col,
		HeaderCell:    handle.HeaderCell,
		Handle:        handle,
		OriginX:       x,
		LastX:         x,
		WidthAtOrigin: width,
		Touch:         touch,
	}
	// Track the pointer on the document rather than the handle so that the
	// drag continues when the pointer leaves the handle.
	if touch {
		s.listen(c.Table, dom.TouchMove, c.onMove)
		s.listen(c.Table, dom.TouchEnd, c.onEnd)
		s.listen(c.Table, dom.TouchCancel, c.onEnd)
	} else {
		s.listen(c.Table, dom.MouseMove, c.onMove)
		s.listen(c.Table, dom.MouseUp, c.onEnd)
	}
	handle.Active = true
	c.session = s

	c.Logger.Debug("resize started", "column", col, "header_cell", s.HeaderCell, "x", x, "width", width, "touch", touch)
	events.Emit(c.Bus, events.ColumnResizeStart, events.ResizeStartPayload{
		Column:     col,
		HeaderCell: s.HeaderCell,
		Width:      width,
		Touch:      touch,
	})
	return true
}

func (s *Session) listen(t *dom.Table, typ dom.EventType, fn dom.Listener) {
	s.listeners = append(s.listeners, listener{typ: typ, id: t.AddEventListener(typ, fn)})
}

func (c *Controller) onMove(ev *dom.Event) {
	if c.session == nil {
		return
	}
	if c.session.Touch {
		if ev.Touches > 1 {
			c.Cancel()
			return
		}
		// prevent scrolling while dragging
		ev.PreventDefault()
	}
	c.Move(ev.X)
}

func (c *Controller) onEnd(ev *dom.Event) {
	if c.session == nil {
		return
	}
	if ev.Type == dom.MouseUp {
		// touch end events carry no position
		c.session.LastX = ev.X
	}
	c.End()
}

// Move records the pointer position and schedules a width update. At most one
// update is scheduled at any time.
func (c *Controller) Move(x float64) {
	s := c.session
	if s == nil {
		return
	}
	// Always record the latest position, even if no update is scheduled, so
	// that the next update uses it.
	s.LastX = x

	if s.FrameScheduled {
		return
	}
	if c.Interval > 0 {
		now := c.Clock()
		if now.Sub(c.lastUpdate) <= c.Interval {
			return
		}
		s.FrameScheduled = true
		c.Frames.RequestFrame(func(time.Time) {
			if c.session != s {
				// session ended before the frame
				return
			}
			c.apply(false)
			// Use the time the update was scheduled rather than when it
			// ran.
			c.lastUpdate = now
			s.FrameScheduled = false
		})
		return
	}
	s.FrameScheduled = true
	c.Frames.RequestFrame(func(time.Time) {
		if c.session != s {
			return
		}
		c.apply(false)
		s.FrameScheduled = false
	})
}

// apply computes the width from the latest pointer position and writes it to
// the store and to the header cell.
func (c *Controller) apply(force bool) {
	s := c.session
	width := s.WidthAtOrigin + (s.LastX - s.OriginX)
	applied, err := c.Store.Set(s.Column, width)
	if err != nil {
		c.Logger.Error("applying column width", "column", s.Column, "error", err)
		return
	}
	headerIndex := s.HeaderCell
	header := c.Header.Cells[headerIndex]
	write := func() {
		header.Style.Width = c.Layout.SpanWidth(headerIndex, c.Store.Lookup, c.Measurer.Measure(header), c.estimated)
	}
	if force {
		write()
	} else {
		c.Writes.Write(write)
	}
	c.Logger.Debug("applied column width", "column", s.Column, "width", applied, "forced", force)
}

func (c *Controller) estimated(col int, estimate float64) {
	c.Logger.Warn("no usable width for column in span: estimating", "column", col, "estimate", estimate)
	_, _ = c.Store.Set(col, estimate)
}

// End finishes the resize, applying the latest pointer position regardless of
// any pending update, and persists the widths.
func (c *Controller) End() {
	if c.session == nil {
		return
	}
	c.apply(true)
	c.finish(false)
}

// Cancel aborts the resize without a final update. Widths applied so far are
// kept and persisted.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	c.finish(true)
}

func (c *Controller) finish(cancelled bool) {
	s := c.session
	// Persistence failures are logged by the store and do not affect the
	// resize.
	_ = c.Store.Persist()

	for _, l := range s.listeners {
		c.Table.RemoveEventListener(l.typ, l.id)
	}
	s.listeners = nil
	s.Handle.Active = false
	c.session = nil

	width, _ := c.Store.Get(s.Column)
	c.Logger.Debug("resize finished", "column", s.Column, "width", width, "cancelled", cancelled)
	events.Emit(c.Bus, events.ColumnResized, events.ResizedPayload{
		Column:    s.Column,
		Width:     width,
		Cancelled: cancelled,
	})
}
