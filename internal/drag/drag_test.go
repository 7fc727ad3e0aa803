package drag

import (
	"testing"
	"time"

	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/events"
	"github.com/leg100/rtable/internal/geometry"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/widths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersister struct {
	saved [][]float64
}

func (f *fakePersister) Save(key string, w []float64) error {
	f.saved = append(f.saved, w)
	return nil
}

func (f *fakePersister) Load(key string) ([]float64, error) {
	return nil, widths.ErrNotFound
}

type fixture struct {
	*Controller

	table     *dom.Table
	frames    *sched.FrameQueue
	persister *fakePersister
	handles   []*dom.Element
	now       time.Time
	resized   []events.ResizedPayload
}

type setupOption func(*Options)

// setup constructs a drag controller for a table with a header cell for each
// of the given widths, with a handle attached to each header cell.
func setup(t *testing.T, headerWidths []float64, spans []int, opts ...setupOption) *fixture {
	t.Helper()

	header := &dom.Row{}
	for i, w := range headerWidths {
		cell := &dom.Cell{Style: dom.Style{Width: w}}
		if spans != nil {
			cell.ColSpan = spans[i]
		}
		header.Cells = append(header.Cells, cell)
	}
	table := &dom.Table{Head: []*dom.Row{header}}
	layout, err := geometry.Resolve(header, dom.Rendered)
	require.NoError(t, err)

	f := &fixture{
		table:     table,
		frames:    &sched.FrameQueue{},
		persister: &fakePersister{},
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	bus := events.NewBus(nil)
	events.On(bus, events.ColumnResized, func(p events.ResizedPayload) {
		f.resized = append(f.resized, p)
	})
	o := Options{
		Table:  table,
		Header: header,
		Layout: layout,
		Store: widths.New(layout.Widths, widths.Options{
			Min:       30,
			Persister: f.persister,
		}),
		Bus:    bus,
		Frames: f.frames,
		Clock:  func() time.Time { return f.now },
	}
	for _, fn := range opts {
		fn(&o)
	}
	f.Controller = New(o)

	for i := range header.Cells {
		handle := &dom.Element{
			Kind:       dom.HandleElement,
			Column:     layout.HandleTarget(i),
			HeaderCell: i,
		}
		header.Cells[i].Append(handle)
		f.Attach(handle)
		f.handles = append(f.handles, handle)
	}
	return f
}

func (f *fixture) mouse(typ dom.EventType, target *dom.Element, x float64) {
	f.table.Dispatch(&dom.Event{Type: typ, X: x, Target: target})
}

func (f *fixture) touch(typ dom.EventType, target *dom.Element, x float64, touches int) *dom.Event {
	ev := &dom.Event{Type: typ, X: x, Target: target, Touches: touches}
	f.table.Dispatch(ev)
	return ev
}

func (f *fixture) width(t *testing.T, col int) float64 {
	t.Helper()
	w, err := f.Store.Get(col)
	require.NoError(t, err)
	return w
}

func TestDrag_FullCycle(t *testing.T) {
	f := setup(t, []float64{100, 150}, nil)
	handle := f.handles[1]

	f.mouse(dom.MouseDown, handle, 100)
	require.NotNil(t, f.Session())
	assert.True(t, handle.Active)

	f.mouse(dom.MouseMove, nil, 180)
	f.mouse(dom.MouseUp, nil, 180)

	assert.Equal(t, 230.0, f.width(t, 1))
	assert.Equal(t, 230.0, f.Header.Cells[1].Style.Width)
	assert.Nil(t, f.Session())
	assert.False(t, handle.Active)
	assert.Equal(t, 0, f.table.ListenerCount())
	assert.Equal(t, [][]float64{{100, 230}}, f.persister.saved)
	assert.Equal(t, []events.ResizedPayload{{Column: 1, Width: 230}}, f.resized)
}

func TestDrag_ClampsToMinimum(t *testing.T) {
	f := setup(t, []float64{150}, nil)

	f.mouse(dom.MouseDown, f.handles[0], 300)
	f.mouse(dom.MouseMove, nil, 100)
	// intermediate renders never go below the minimum either
	f.frames.Flush(f.now)
	assert.Equal(t, 30.0, f.width(t, 0))
	assert.Equal(t, 30.0, f.Header.Cells[0].Style.Width)

	f.mouse(dom.MouseUp, nil, 100)
	assert.Equal(t, 30.0, f.width(t, 0))
}

func TestDrag_ClampsToMaximum(t *testing.T) {
	f := setup(t, []float64{150}, nil, func(o *Options) {
		o.Store = widths.New(o.Layout.Widths, widths.Options{Min: 30, Max: 200})
	})

	f.mouse(dom.MouseDown, f.handles[0], 0)
	f.mouse(dom.MouseUp, nil, 500)

	assert.Equal(t, 200.0, f.width(t, 0))
}

func TestDrag_SingleSession(t *testing.T) {
	f := setup(t, []float64{100, 100}, nil)

	require.True(t, f.Start(f.handles[0], 50, false))
	assert.False(t, f.Start(f.handles[1], 90, false))

	col, ok := f.Resizing()
	assert.True(t, ok)
	assert.Equal(t, 0, col)
	assert.False(t, f.handles[1].Active)
	// only the first session's listeners are registered
	assert.Equal(t, 2, f.table.ListenerCount())
}

func TestDrag_OneFramePending(t *testing.T) {
	f := setup(t, []float64{100}, nil)

	f.mouse(dom.MouseDown, f.handles[0], 0)
	for x := 1; x <= 10; x++ {
		f.mouse(dom.MouseMove, nil, float64(x))
	}
	// width unchanged until the frame runs
	assert.Equal(t, 100.0, f.width(t, 0))
	assert.Equal(t, 1, f.frames.Flush(f.now))
	// the frame uses the latest position
	assert.Equal(t, 110.0, f.width(t, 0))

	f.mouse(dom.MouseMove, nil, 20)
	assert.Equal(t, 1, f.frames.Flush(f.now))
	assert.Equal(t, 120.0, f.width(t, 0))
}

func TestDrag_FinalApplyOverridesPendingFrame(t *testing.T) {
	f := setup(t, []float64{100}, nil)

	f.mouse(dom.MouseDown, f.handles[0], 0)
	f.mouse(dom.MouseMove, nil, 10)
	f.mouse(dom.MouseMove, nil, 40)
	f.mouse(dom.MouseUp, nil, 40)
	assert.Equal(t, 140.0, f.width(t, 0))

	// the stale frame from the ended session is a no-op
	f.frames.Flush(f.now)
	assert.Equal(t, 140.0, f.width(t, 0))
}

func TestDrag_IntervalThrottle(t *testing.T) {
	f := setup(t, []float64{100}, nil, func(o *Options) {
		o.Interval = 50 * time.Millisecond
	})

	f.mouse(dom.MouseDown, f.handles[0], 0)
	f.mouse(dom.MouseMove, nil, 10)
	assert.Equal(t, 1, f.frames.Flush(f.now))
	assert.Equal(t, 110.0, f.width(t, 0))

	// within the interval: position recorded, no update scheduled
	f.now = f.now.Add(20 * time.Millisecond)
	f.mouse(dom.MouseMove, nil, 20)
	assert.False(t, f.frames.Pending())
	assert.Equal(t, 110.0, f.width(t, 0))

	// interval elapsed: update scheduled with the latest position
	f.now = f.now.Add(40 * time.Millisecond)
	f.mouse(dom.MouseMove, nil, 30)
	assert.Equal(t, 1, f.frames.Flush(f.now.Add(time.Second)))
	assert.Equal(t, 130.0, f.width(t, 0))

	// the recorded time is when the update was scheduled
	assert.Equal(t, f.now, f.lastUpdate)
}

func TestDrag_DeferredWrites(t *testing.T) {
	idle := &sched.IdleQueue{}
	f := setup(t, []float64{100}, nil, func(o *Options) {
		o.Writes = idle
	})

	f.mouse(dom.MouseDown, f.handles[0], 0)
	f.mouse(dom.MouseMove, nil, 25)
	f.frames.Flush(f.now)

	// store updated straight away, header cell on the next idle slot
	assert.Equal(t, 125.0, f.width(t, 0))
	assert.Equal(t, 100.0, f.Header.Cells[0].Style.Width)
	idle.Drain()
	assert.Equal(t, 125.0, f.Header.Cells[0].Style.Width)

	// the final update is written synchronously
	f.mouse(dom.MouseUp, nil, 60)
	assert.Equal(t, 160.0, f.Header.Cells[0].Style.Width)
}

func TestDrag_SpannedHeaderCell(t *testing.T) {
	f := setup(t, []float64{90, 200}, []int{1, 2})
	handle := f.handles[1]
	require.Equal(t, 2, handle.Column)

	f.mouse(dom.MouseDown, handle, 0)
	f.mouse(dom.MouseUp, nil, 50)

	// only the last column in the span is resized
	assert.Equal(t, []float64{90, 100, 150}, f.Store.Widths())
	// the header cell spans both columns
	assert.Equal(t, 250.0, f.Header.Cells[1].Style.Width)
}

func TestDrag_FallbackWidth(t *testing.T) {
	f := setup(t, []float64{100, 0}, nil, func(o *Options) {
		o.Store = widths.New([]float64{100, 0}, widths.Options{Min: 30})
	})

	f.mouse(dom.MouseDown, f.handles[1], 0)
	// natural width of an empty cell is its padding
	assert.Equal(t, 2.0, f.Session().WidthAtOrigin)
	f.mouse(dom.MouseUp, nil, 50)

	assert.Equal(t, 52.0, f.width(t, 1))
}

func TestDrag_CollapsedColumnNotResizable(t *testing.T) {
	f := setup(t, []float64{100}, nil)
	require.NoError(t, f.Store.SetCollapsed(0, true))

	f.mouse(dom.MouseDown, f.handles[0], 0)

	assert.Nil(t, f.Session())
	assert.Equal(t, 0, f.table.ListenerCount())
}

func TestDrag_Touch(t *testing.T) {
	t.Run("single finger drag", func(t *testing.T) {
		f := setup(t, []float64{100}, nil)

		ev := f.touch(dom.TouchStart, f.handles[0], 10, 1)
		assert.True(t, ev.DefaultPrevented())
		require.NotNil(t, f.Session())
		assert.True(t, f.Session().Touch)

		ev = f.touch(dom.TouchMove, nil, 40, 1)
		assert.True(t, ev.DefaultPrevented())
		// mouse events do not drive a touch drag
		f.mouse(dom.MouseUp, nil, 500)
		require.NotNil(t, f.Session())

		f.touch(dom.TouchEnd, nil, 40, 0)
		assert.Nil(t, f.Session())
		assert.Equal(t, 130.0, f.width(t, 0))
		assert.Equal(t, 0, f.table.ListenerCount())
	})

	t.Run("multi-touch start ignored", func(t *testing.T) {
		f := setup(t, []float64{100}, nil)

		f.touch(dom.TouchStart, f.handles[0], 10, 2)

		assert.Nil(t, f.Session())
	})

	t.Run("multi-touch move aborts", func(t *testing.T) {
		f := setup(t, []float64{100}, nil)

		f.touch(dom.TouchStart, f.handles[0], 0, 1)
		f.touch(dom.TouchMove, nil, 30, 1)
		f.frames.Flush(f.now)
		f.touch(dom.TouchMove, nil, 90, 2)

		assert.Nil(t, f.Session())
		assert.Equal(t, 130.0, f.width(t, 0))
		assert.Equal(t, 0, f.table.ListenerCount())
		require.Len(t, f.resized, 1)
		assert.True(t, f.resized[0].Cancelled)
	})

	t.Run("touch cancel unwinds", func(t *testing.T) {
		f := setup(t, []float64{100}, nil)

		f.touch(dom.TouchStart, f.handles[0], 0, 1)
		f.touch(dom.TouchMove, nil, 15, 1)
		f.touch(dom.TouchCancel, nil, 0, 0)

		assert.Nil(t, f.Session())
		assert.Equal(t, 0, f.table.ListenerCount())
		assert.False(t, f.handles[0].Active)
	})
}

func TestDrag_Cancel(t *testing.T) {
	f := setup(t, []float64{100}, nil)

	f.mouse(dom.MouseDown, f.handles[0], 0)
	f.mouse(dom.MouseMove, nil, 70)
	f.Cancel()

	// no final update: the pending move is dropped
	assert.Equal(t, 100.0, f.width(t, 0))
	assert.Nil(t, f.Session())
	assert.Len(t, f.persister.saved, 1)
	f.frames.Flush(f.now)
	assert.Equal(t, 100.0, f.width(t, 0))

	// idle cancel is a no-op
	f.Cancel()
	assert.Len(t, f.persister.saved, 1)
}
