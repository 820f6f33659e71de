package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
)

// WaitingMessage is shown until there is enough data to draw a trace.
const WaitingMessage = "Waiting for data to be sent from the sensor..."

// Height breakpoints for the graph
const (
	HeightMinimal  = 24
	HeightStandard = 40
)

// Options configures the dashboard.
type Options struct {
	// BufferSize is how many recent samples the graph shows.
	BufferSize int
	// Refresh is the tick that re-derives BPM when no data arrives.
	Refresh time.Duration
	// MinValue and MaxValue bound the graph's vertical axis.
	MinValue int
	MaxValue int
	// ListenAddr is shown in the header until the session reports its own.
	ListenAddr string
	// Export writes the full sample log and returns the file path.
	Export func(now time.Time) (string, error)
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Model is the Bubble Tea model for the pulse dashboard.
type Model struct {
	store   *sample.Store
	opts    Options
	keys    KeyMap
	help    help.Model
	history *History

	state  session.State
	stats  sample.Stats
	window []float64

	status        string
	statusIsError bool
	banner        string

	width      int
	height     int
	lastUpdate time.Time
	paused     bool
	showHelp   bool
	quitting   bool

	now func() time.Time
}

// NewModel creates a dashboard reading from store.
func NewModel(store *sample.Store, opts Options) Model {
	if opts.BufferSize <= 0 {
		opts.BufferSize = sample.DefaultDisplaySize
	}
	if opts.Refresh <= 0 {
		opts.Refresh = 250 * time.Millisecond
	}
	if opts.MaxValue <= opts.MinValue {
		opts.MinValue, opts.MaxValue = 0, 1024
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return Model{
		store:   store,
		opts:    opts,
		keys:    DefaultKeyMap,
		help:    help.New(),
		history: NewHistory(DefaultHistorySize),
		state:   session.StateIdle,
		status:  "starting",
		now:     now,
	}
}

// Init starts the refresh timer.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.refresh(time.Time(msg))
		m.history.Push(m.stats.BPM, m.stats.SamplesPerSecond)
		return m, m.tickCmd()

	case NotificationMsg:
		m.handleNotification(msg.Notification)

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(errors.Summary(msg.err), true)
		} else {
			m.setStatus("exported "+msg.path, false)
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

func (m *Model) handleNotification(n session.Notification) {
	m.state = n.State

	switch n.Kind {
	case session.KindInit:
		m.setStatus(n.Message, false)
	case session.KindInfo:
		m.setStatus(n.Message, false)
	case session.KindError:
		msg := n.Message
		if msg == "" {
			msg = errors.Summary(n.Err)
		}
		m.setStatus(msg, true)
		m.banner = "Session failed"
	case session.KindStopped:
		m.setStatus(n.Message, false)
		m.banner = "Session ended: " + n.Message
	case session.KindDataArrived:
		m.refresh(m.now())
	}
}

// refresh re-derives every displayed value from the store. The trace is
// left alone while paused.
func (m *Model) refresh(now time.Time) {
	m.lastUpdate = now
	m.stats = m.store.Stats(now)
	if !m.paused {
		m.window = sample.Values(m.store.RecentWindow(m.opts.BufferSize))
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// exportCmd writes the full sample log in the background.
func (m Model) exportCmd() tea.Cmd {
	export := m.opts.Export
	now := m.now()
	return func() tea.Msg {
		if export == nil {
			return exportDoneMsg{err: errors.New(errors.ErrExport,
				"Export isn't available in this session", "")}
		}
		path, err := export(now)
		return exportDoneMsg{path: path, err: err}
	}
}

// Stats returns the values the dashboard last derived.
func (m Model) Stats() sample.Stats {
	return m.stats
}

// State returns the last session state the dashboard saw.
func (m Model) State() session.State {
	return m.state
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusIsError
}

// Paused reports whether the trace is frozen.
func (m Model) Paused() bool {
	return m.paused
}

// graphHeight returns the number of braille rows for the current terminal.
func (m Model) graphHeight() int {
	switch {
	case m.height >= HeightStandard:
		return 12
	case m.height >= HeightMinimal:
		return 8
	default:
		return 4
	}
}

// Run shows the dashboard until the user quits or ctx is cancelled. Every
// notification from notes is delivered to sinks and then to the dashboard.
func Run(ctx context.Context, model Model, notes <-chan session.Notification, sinks ...session.Sink) error {
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge := NewBridge(program)

	go session.Dispatch(notes, append(sinks, bridge)...)

	stop := context.AfterFunc(ctx, program.Quit)
	defer stop()

	_, err := program.Run()
	return err
}
