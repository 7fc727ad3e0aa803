package top

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/storage"
	"github.com/leg100/rtable/internal/tabledef"
	"github.com/leg100/rtable/internal/tui/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	table  *resizable.Table
	store  *storage.MemoryStore
	frames *sched.FrameQueue
	tm     *teatest.TestModel
}

// newTable constructs a table with a spanned header: Name, Contact (spanning
// two columns) and Role.
func newTable(t *testing.T, opts ...resizable.Option) *resizable.Table {
	t.Helper()

	def := tabledef.Definition{
		ID: "people",
		Header: []tabledef.Column{
			{Title: "Name", Width: 20},
			{Title: "Contact", Span: 2, Width: 30},
			{Title: "Role", Width: 15},
		},
		Rows: [][]string{
			{"alice", "alice@example.com", "555-0100", "admin"},
			{"bob", "bob@example.com", "555-0101", "user"},
		},
	}
	cfg := resizable.DefaultConfig()
	cfg.MinColumnWidth = 4
	cfg.ResizeHandleWidth = 1

	tbl, err := resizable.New(def.Document(), cfg, opts...)
	require.NoError(t, err)
	return tbl
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  storage.NewMemory(),
		frames: &sched.FrameQueue{},
	}
	f.table = newTable(t,
		resizable.WithPersister(f.store),
		resizable.WithFrameScheduler(f.frames),
	)

	f.tm = StartTest(t, Options{
		Table:  f.table,
		Frames: f.frames,
		Logger: logging.NewLogger(logging.Options{Level: "debug"}),
	}, 120, 20)
	return f
}

func (f *fixture) waitFor(t *testing.T, want ...string) {
	t.Helper()

	teatest.WaitFor(
		t, f.tm.Output(),
		func(bts []byte) bool {
			for _, s := range want {
				if !bytes.Contains(bts, []byte(s)) {
					return false
				}
			}
			return true
		},
		teatest.WithCheckInterval(time.Millisecond*100),
		teatest.WithDuration(time.Second*3),
	)
}

func (f *fixture) quit(t *testing.T) {
	t.Helper()

	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	f.tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestRender(t *testing.T) {
	f := setup(t)

	f.waitFor(t, "- Name", "555-0100")

	f.quit(t)
}

func TestQuit(t *testing.T) {
	f := setup(t)

	f.quit(t)

	assert.True(t, f.table.Destroyed())
	got, err := f.store.Load("resizable-table-widths-people")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 15, 15, 15}, got)
}

func TestToggleColumn(t *testing.T) {
	f := setup(t)

	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	f.waitFor(t, "collapsed column 2")

	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	f.waitFor(t, "expanded column 2")

	f.quit(t)
}

func TestWidenSelectedColumn(t *testing.T) {
	f := setup(t)

	f.tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'>'}})
	f.waitFor(t, "column 2 width: 16")

	f.quit(t)

	got, err := f.store.Load("resizable-table-widths-people")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 16, 15, 15}, got)
}

func TestHelp(t *testing.T) {
	f := setup(t)

	f.tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	f.waitFor(t, "COLUMNS")

	f.quit(t)
}

func TestMouseResize(t *testing.T) {
	f := setup(t)

	// Locate the first column's handle before the program starts handling
	// events.
	view := table.Render(f.table, table.Options{HandleWidth: 1})
	var x int
	for _, r := range view.Regions {
		if r.Element.Kind == dom.HandleElement && r.Element.Column == 0 {
			x = r.Start
		}
	}
	require.Equal(t, 19, x)

	f.tm.Send(tea.MouseMsg{X: x, Y: tableHeaderY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	f.tm.Send(tea.MouseMsg{X: x + 3, Y: tableHeaderY, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	f.tm.Send(tea.MouseMsg{X: x + 5, Y: tableHeaderY, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	f.waitFor(t, "column 1/4 25")

	f.quit(t)

	got, err := f.store.Load("resizable-table-widths-people")
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 15, 15, 15}, got)
}

func TestMouseToggle(t *testing.T) {
	f := setup(t)

	f.tm.Send(tea.MouseMsg{X: 0, Y: tableHeaderY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	f.waitFor(t, "column 1/4 20 (collapsed)")

	f.quit(t)
}

func TestReload(t *testing.T) {
	store := storage.NewMemory()
	tbl := newTable(t, resizable.WithPersister(store))
	m, err := newModel(Options{Table: tbl})
	require.NoError(t, err)

	// a reload following the program's own save leaves the footer alone
	_, err = tbl.SetColumnWidth(1, 16)
	require.NoError(t, err)
	m.info = "column 2 width: 16"
	updated, _ := m.Update(reloadMsg{})
	m = updated.(model)
	assert.Equal(t, "column 2 width: 16", m.info)

	// whereas widths saved elsewhere are reported
	require.NoError(t, store.Save("resizable-table-widths-people", []float64{20, 16, 15, 30}))
	updated, _ = m.Update(reloadMsg{})
	m = updated.(model)
	assert.Equal(t, "reloaded widths", m.info)
	assert.Equal(t, []float64{20, 16, 15, 30}, tbl.Widths())
}
