package resizable

import (
	"errors"
	"math"
	"time"

	"github.com/leg100/rtable/internal/events"
)

const (
	DefaultMinColumnWidth    = 30
	DefaultResizeHandleWidth = 12
	DefaultPlaceholderWidth  = 3
)

// Config configures a resizable table.
type Config struct {
	// EnableResizing, if false, creates no resize handles.
	EnableResizing bool
	// EnableCollapsing, if false, creates no collapse toggles.
	EnableCollapsing bool
	// MinColumnWidth and MaxColumnWidth bound every column width. A zero
	// MaxColumnWidth is unbounded.
	MinColumnWidth float64
	MaxColumnWidth float64
	// ResizeHandleWidth is the hit area of a resize handle.
	ResizeHandleWidth int
	// UsePlaceholdersForCollapse, if true, shows a narrow placeholder in place
	// of a collapsed column. Otherwise collapsed columns leave no trace.
	UsePlaceholdersForCollapse bool
	// PlaceholderWidth is the width of a placeholder.
	PlaceholderWidth float64
	// ResizeUpdateInterval is the minimum time between width updates while
	// dragging. Zero bounds updates by frame only.
	ResizeUpdateInterval time.Duration
	// DeferDOMWrites, if true, defers width writes to the document until the
	// host reports an idle slot. The final write of a resize is never
	// deferred.
	DeferDOMWrites bool

	Hooks Hooks
}

// Hooks are lifecycle callbacks, registered on the table's event bus when the
// table is constructed.
type Hooks struct {
	OnInit              func(events.InitPayload)
	OnColumnResizeStart func(events.ResizeStartPayload)
	OnColumnResized     func(events.ResizedPayload)
	OnColumnCollapse    func(events.CollapsePayload)
	OnColumnExpand      func(events.ExpandPayload)
	OnColumnWidthSet    func(events.WidthSetPayload)
	OnBeforeDestroy     func(events.DestroyPayload)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		EnableResizing:    true,
		EnableCollapsing:  true,
		MinColumnWidth:    DefaultMinColumnWidth,
		MaxColumnWidth:    math.Inf(1),
		ResizeHandleWidth: DefaultResizeHandleWidth,
		PlaceholderWidth:  DefaultPlaceholderWidth,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.MinColumnWidth) || math.IsInf(c.MinColumnWidth, 0) || c.MinColumnWidth < 0:
		return errors.New("minimum column width must be a finite number, zero or more")
	case math.IsNaN(c.MaxColumnWidth) || c.MaxColumnWidth < 0:
		return errors.New("maximum column width must be zero or more")
	case c.MaxColumnWidth != 0 && c.MaxColumnWidth < c.MinColumnWidth:
		return errors.New("maximum column width must not be less than the minimum")
	case c.ResizeHandleWidth < 0:
		return errors.New("resize handle width must be zero or more")
	case c.PlaceholderWidth < 0:
		return errors.New("placeholder width must be zero or more")
	case c.ResizeUpdateInterval < 0:
		return errors.New("resize update interval must be zero or more")
	}
	return nil
}

func (h Hooks) register(bus *events.Bus) {
	if h.OnInit != nil {
		events.On(bus, events.Init, h.OnInit)
	}
	if h.OnColumnResizeStart != nil {
		events.On(bus, events.ColumnResizeStart, h.OnColumnResizeStart)
	}
	if h.OnColumnResized != nil {
		events.On(bus, events.ColumnResized, h.OnColumnResized)
	}
	if h.OnColumnCollapse != nil {
		events.On(bus, events.ColumnCollapse, h.OnColumnCollapse)
	}
	if h.OnColumnExpand != nil {
		events.On(bus, events.ColumnExpand, h.OnColumnExpand)
	}
	if h.OnColumnWidthSet != nil {
		events.On(bus, events.ColumnWidthSet, h.OnColumnWidthSet)
	}
	if h.OnBeforeDestroy != nil {
		events.On(bus, events.BeforeDestroy, h.OnBeforeDestroy)
	}
}
