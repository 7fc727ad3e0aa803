// Package events provides a synchronous, fault-isolated notification bus with
// a fixed set of typed topics.
package events

import (
	"fmt"

	"github.com/leg100/rtable/internal/logging"
)

// Name identifies an event.
type Name string

const (
	InitName              Name = "init"
	ColumnResizeStartName Name = "columnResizeStart"
	ColumnResizedName     Name = "columnResized"
	ColumnCollapseName    Name = "columnCollapse"
	ColumnExpandName      Name = "columnExpand"
	ColumnWidthSetName    Name = "columnWidthSet"
	BeforeDestroyName     Name = "beforeDestroy"
)

type (
	InitPayload struct {
		ColumnCount int
		Widths      []float64
		// Restored is true if widths were restored from persisted state.
		Restored bool
	}
	ResizeStartPayload struct {
		Column     int
		HeaderCell int
		Width      float64
		Touch      bool
	}
	ResizedPayload struct {
		Column int
		Width  float64
		// Cancelled is true if the drag was aborted rather than released.
		Cancelled bool
	}
	CollapsePayload struct {
		Column int
		Width  float64
	}
	ExpandPayload struct {
		Column int
		Width  float64
	}
	WidthSetPayload struct {
		Column    int
		Requested float64
		Width     float64
	}
	DestroyPayload struct {
		ColumnCount int
	}
)

// Topic pairs an event name with its payload type.
type Topic[P any] struct {
	name Name
}

func (t Topic[P]) Name() Name { return t.name }

var (
	Init              = Topic[InitPayload]{InitName}
	ColumnResizeStart = Topic[ResizeStartPayload]{ColumnResizeStartName}
	ColumnResized     = Topic[ResizedPayload]{ColumnResizedName}
	ColumnCollapse    = Topic[CollapsePayload]{ColumnCollapseName}
	ColumnExpand      = Topic[ExpandPayload]{ColumnExpandName}
	ColumnWidthSet    = Topic[WidthSetPayload]{ColumnWidthSetName}
	BeforeDestroy     = Topic[DestroyPayload]{BeforeDestroyName}
)

// HandlerID identifies a registered handler.
type HandlerID uint64

type handler struct {
	id HandlerID
	fn any
}

// Bus dispatches events to handlers registered by name.
type Bus struct {
	handlers map[Name][]handler
	next     HandlerID
	logger   logging.Interface
}

func NewBus(logger logging.Interface) *Bus {
	if logger == nil {
		logger = logging.Discard
	}
	return &Bus{
		handlers: make(map[Name][]handler),
		logger:   logger,
	}
}

// On registers fn to be called whenever an event on the topic is emitted.
func On[P any](b *Bus, topic Topic[P], fn func(P)) HandlerID {
	b.next++
	b.handlers[topic.name] = append(b.handlers[topic.name], handler{id: b.next, fn: fn})
	return b.next
}

// Off removes the handlers with the given ids from the named event. If no ids
// are given then all handlers for the event are removed.
func (b *Bus) Off(name Name, ids ...HandlerID) {
	if len(ids) == 0 {
		delete(b.handlers, name)
		return
	}
	remaining := b.handlers[name][:0:0]
	for _, h := range b.handlers[name] {
		if !contains(ids, h.id) {
			remaining = append(remaining, h)
		}
	}
	b.handlers[name] = remaining
}

// Clear removes every handler.
func (b *Bus) Clear() {
	b.handlers = make(map[Name][]handler)
}

// Len returns the number of handlers registered for the named event.
func (b *Bus) Len(name Name) int {
	return len(b.handlers[name])
}

// Emit calls each handler registered for the topic in registration order. A
// handler that panics is logged and does not prevent the remaining handlers
// from running.
func Emit[P any](b *Bus, topic Topic[P], payload P) {
	// Handlers may register or remove handlers, so iterate over a copy.
	handlers := append([]handler(nil), b.handlers[topic.name]...)
	for _, h := range handlers {
		fn, ok := h.fn.(func(P))
		if !ok {
			continue
		}
		b.call(topic.name, h.id, func() { fn(payload) })
	}
}

func (b *Bus) call(name Name, id HandlerID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler failed", "event", name, "handler", id, "error", fmt.Sprint(r))
		}
	}()
	fn()
}

func contains(ids []HandlerID, id HandlerID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
