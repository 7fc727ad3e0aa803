package top

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/pubsub"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/tui"
	"github.com/leg100/rtable/internal/tui/keys"
	"github.com/leg100/rtable/internal/tui/table"
	"github.com/leg100/rtable/internal/version"
)

const (
	headerHeight         = 2
	horizontalRuleHeight = 1
	messageFooterHeight  = 1

	// The table's header line sits beneath the header and a horizontal
	// rule.
	tableHeaderY = headerHeight + horizontalRuleHeight

	// frameInterval is the time between frames while there are pending
	// updates.
	frameInterval = 16 * time.Millisecond
)

type (
	// frameMsg marks a frame, carrying the time of the frame.
	frameMsg time.Time
	// reloadMsg is sent when persisted widths have changed outside of the
	// program.
	reloadMsg struct{}
)

type model struct {
	table  *resizable.Table
	frames *sched.FrameQueue
	idle   *sched.IdleQueue
	logger logging.Interface

	handleWidth int
	// selected logical column
	selected int

	width  int
	height int

	showHelp bool
	// ticking is true while a frame is scheduled.
	ticking bool

	// Either an error or an informational message is rendered in the footer,
	// and failing that the latest log message.
	err     error
	info    string
	lastLog string

	dump *os.File
}

// Options for constructing the top-level model.
type Options struct {
	Table *resizable.Table
	// Frames is the queue the table schedules frames on.
	Frames *sched.FrameQueue
	// Idle is the queue the table defers writes to, if any.
	Idle   *sched.IdleQueue
	Logger *logging.Logger
	// Changes notifies when persisted widths change outside of the program.
	Changes <-chan struct{}
	Debug   bool
}

func newModel(opts Options) (model, error) {
	if opts.Table == nil {
		return model{}, errors.New("no table")
	}
	var dump *os.File
	if opts.Debug {
		var err error
		dump, err = os.OpenFile("messages.log", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
		if err != nil {
			return model{}, err
		}
	}
	var logger logging.Interface = logging.Discard
	if opts.Logger != nil {
		logger = opts.Logger
	}
	frames := opts.Frames
	if frames == nil {
		frames = &sched.FrameQueue{}
	}
	idle := opts.Idle
	if idle == nil {
		idle = &sched.IdleQueue{}
	}
	// Terminal handles are narrow regardless of the configured hit area.
	handleWidth := min(max(opts.Table.Config().ResizeHandleWidth, 1), 3)

	return model{
		table:       opts.Table,
		frames:      frames,
		idle:        idle,
		logger:      logger,
		handleWidth: handleWidth,
		dump:        dump,
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dump != nil {
		spew.Fdump(m.dump, msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		// Pressing any key makes any info/error message in the footer disappear
		m.info = ""
		m.err = nil

		switch {
		case key.Matches(msg, keys.Global.Quit):
			m.quit()
			return m, tea.Quit
		case key.Matches(msg, keys.Global.Help):
			// '?' toggles help
			m.showHelp = !m.showHelp
		case key.Matches(msg, keys.Global.Reload):
			m.reload()
		case key.Matches(msg, keys.Columns.Toggle):
			m.toggle(int(msg.Runes[0] - '1'))
		case key.Matches(msg, keys.Columns.Collapse):
			m.toggle(m.selected)
		case key.Matches(msg, keys.Columns.Next):
			m.selected = (m.selected + 1) % m.table.ColumnCount()
		case key.Matches(msg, keys.Columns.Previous):
			m.selected = (m.selected - 1 + m.table.ColumnCount()) % m.table.ColumnCount()
		case key.Matches(msg, keys.Columns.Narrow):
			m.resize(-1)
		case key.Matches(msg, keys.Columns.Widen):
			m.resize(1)
		}
	case tea.MouseMsg:
		if !m.showHelp {
			m.mouse(msg)
		}
	case frameMsg:
		m.ticking = false
		m.frames.Flush(time.Time(msg))
		// The host is idle once the frame is done.
		m.idle.Drain()
	case reloadMsg:
		if col, ok := m.table.ResizeActive(); ok {
			// the resize persists its own widths once finished
			m.logger.Debug("skipping reload during resize", "column", col)
			break
		}
		m.reload()
	case pubsub.Event[logging.Message]:
		m.lastLog = msg.Payload.String()
	}
	return m, m.scheduleFrame()
}

// scheduleFrame schedules a frame if there is work pending and a frame is not
// already scheduled.
func (m *model) scheduleFrame() tea.Cmd {
	if m.ticking || (!m.frames.Pending() && !m.idle.Pending()) {
		return nil
	}
	m.ticking = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// mouse relays mouse events to the document: presses on the header are
// dispatched to the element beneath the pointer, while movement and releases
// are dispatched to the document as a whole.
func (m *model) mouse(msg tea.MouseMsg) {
	doc := m.table.Document()
	x := float64(msg.X)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y != tableHeaderY {
			return
		}
		element, ok := m.render().HitTest(msg.X)
		if !ok {
			return
		}
		switch element.Kind {
		case dom.HandleElement:
			doc.Dispatch(&dom.Event{Type: dom.MouseDown, X: x, Target: element})
		case dom.ToggleElement:
			doc.Dispatch(&dom.Event{Type: dom.Click, X: x, Target: element})
		}
	case tea.MouseActionMotion:
		if _, ok := m.table.ResizeActive(); ok {
			doc.Dispatch(&dom.Event{Type: dom.MouseMove, X: x})
		}
	case tea.MouseActionRelease:
		if _, ok := m.table.ResizeActive(); ok {
			doc.Dispatch(&dom.Event{Type: dom.MouseUp, X: x})
		}
	}
}

func (m *model) toggle(col int) {
	if err := m.table.ToggleColumn(col); err != nil {
		m.err = err
		return
	}
	state, err := m.table.GetColumnState(col)
	if err != nil {
		m.err = err
		return
	}
	if state.Collapsed {
		m.info = fmt.Sprintf("collapsed column %d", col+1)
	} else {
		m.info = fmt.Sprintf("expanded column %d", col+1)
	}
}

func (m *model) resize(delta float64) {
	state, err := m.table.GetColumnState(m.selected)
	if err != nil {
		m.err = err
		return
	}
	width, err := m.table.SetColumnWidth(m.selected, max(state.StoredWidth+delta, 0))
	if err != nil {
		m.err = err
		return
	}
	m.info = fmt.Sprintf("column %d width: %.0f", m.selected+1, width)
}

func (m *model) reload() {
	before := m.table.Widths()
	reloaded, err := m.table.Reload()
	switch {
	case err != nil:
		m.err = fmt.Errorf("reloading widths: %w", err)
	case !reloaded:
		m.info = "no saved widths"
	case slices.Equal(before, m.table.Widths()):
		// Most likely the program's own save; leave the footer alone.
		m.logger.Debug("reloaded widths unchanged")
	default:
		m.info = "reloaded widths"
	}
}

func (m *model) quit() {
	if err := m.table.Save(); err != nil {
		m.logger.Error("saving widths on exit", "error", err)
	}
	if err := m.table.Destroy(); err != nil {
		m.logger.Error("destroying table", "error", err)
	}
	if m.dump != nil {
		m.dump.Close()
	}
}

func (m model) render() table.View {
	return table.Render(m.table, table.Options{
		Selected:    m.selected,
		HandleWidth: m.handleWidth,
	})
}

var (
	titleStyle   = tui.Bold.Copy().Foreground(tui.Pink).Margin(0, 2, 0, 1)
	versionStyle = tui.Regular.Copy().Margin(0, 2, 0, 1)
)

func (m model) View() string {
	if m.table.Destroyed() {
		return ""
	}
	var (
		content           string
		shortHelpBindings []key.Binding
	)
	if m.showHelp {
		content = lipgloss.NewStyle().
			Margin(1).
			Render(
				fullHelpView(
					keys.KeyMapToSlice(keys.Columns),
					keys.KeyMapToSlice(keys.Global),
				),
			)
		shortHelpBindings = []key.Binding{
			key.NewBinding(
				key.WithKeys("?"),
				key.WithHelp("?", "close help"),
			),
		}
	} else {
		content = m.render().String()
		shortHelpBindings = append(
			keys.KeyMapToSlice(keys.Columns),
			keys.KeyMapToSlice(keys.Global)...,
		)
	}

	// Render table identity and version in top left corner
	static := lipgloss.JoinVertical(lipgloss.Top,
		titleStyle.Render(m.table.ID()),
		versionStyle.Render(version.Version),
	)
	shortHelpWidth := max(m.width-lipgloss.Width(static)-4, 0)
	shortHelp := lipgloss.NewStyle().
		Margin(0, 2).
		Width(shortHelpWidth).
		Render(shortHelpView(shortHelpBindings, shortHelpWidth))

	// Selected column and its width go in the bottom right corner.
	var metadata string
	if state, err := m.table.GetColumnState(m.selected); err == nil {
		status := fmt.Sprintf("column %d/%d %.0f", m.selected+1, m.table.ColumnCount(), state.StoredWidth)
		if state.Collapsed {
			status += " (collapsed)"
		}
		if col, ok := m.table.ResizeActive(); ok {
			status = fmt.Sprintf("resizing column %d ", col+1) + status
		}
		metadata = tui.Padded.Copy().Render(status)
	}

	var footerMsg string
	switch {
	case m.err != nil:
		footerMsg = tui.Padded.Copy().
			Foreground(tui.Red).
			Render("Error: " + m.err.Error())
	case m.info != "":
		footerMsg = tui.Padded.Copy().Render(m.info)
	case m.lastLog != "":
		footerMsg = tui.Padded.Copy().Foreground(tui.LightGrey).Render(m.lastLog)
	}

	return lipgloss.JoinVertical(
		lipgloss.Top,
		// header
		lipgloss.NewStyle().
			Height(headerHeight).
			MaxHeight(headerHeight).
			Render(lipgloss.JoinHorizontal(lipgloss.Left, static, shortHelp)),
		// horizontal rule
		strings.Repeat("─", m.width),
		// content
		lipgloss.NewStyle().
			Height(m.viewHeight()).
			MaxHeight(m.viewHeight()).
			MaxWidth(m.width).
			Render(content),
		// horizontal rule
		strings.Repeat("─", m.width),
		// footer
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			tui.Regular.
				Inline(true).
				MaxWidth(max(m.width-lipgloss.Width(metadata), 0)).
				Width(max(m.width-lipgloss.Width(metadata), 0)).
				Render(footerMsg),
			metadata,
		),
	)
}

// viewHeight retrieves the height available beneath the header and above the
// footer.
func (m model) viewHeight() int {
	return max(m.height-headerHeight-2*horizontalRuleHeight-messageFooterHeight, 0)
}
