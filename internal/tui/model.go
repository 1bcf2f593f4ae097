package tui

import (
	"context"
	"time"

	"tunnelctl/internal/profile"
	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const statusMessageTTL = 4 * time.Second

// MessageType classifies the status line text.
type MessageType int

const (
	StatusMsgInfo MessageType = iota
	StatusMsgSuccess
	StatusMsgWarning
	StatusMsgError
)

// Options configures the dashboard.
type Options struct {
	// Title is shown in the header. Defaults to "tunnelctl".
	Title string
	// Context bounds profile reloads started from the dashboard.
	Context context.Context
	// LogChannel receives internal log entries (see logging.InitForTUI).
	LogChannel <-chan logging.LogEntry
	// Clipboard receives copied log lines. Defaults to the system clipboard.
	Clipboard ClipboardWriter
}

type clearStatusMsg struct{ seq int }

// model is the bubbletea model of the dashboard. It holds snapshots of the
// store taken when the bridge reports a change; View never reads the store.
type model struct {
	store  *state.Store
	bridge *changeBridge
	ctx    context.Context
	logCh  <-chan logging.LogEntry
	clip   ClipboardWriter

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	spinner  spinner.Model

	title  string
	width  int
	height int
	ready  bool

	autoScroll bool
	cursor     int
	loading    bool
	quitting   bool

	statusMessage     string
	statusMessageType MessageType
	statusSeq         int
	lastLogEntry      string

	// Snapshots.
	status    state.ConnectionStatus
	lastError string
	steps     []state.DiagnosticStep
	summary   state.StepSummary
	visible   []string
	filter    state.LogFilter
	buffered  int
	capacity  int
	profiles  []profile.Profile
	activeID  string
	stats     state.LoadStats
}

// InitialModel builds the dashboard model for store. The model subscribes to
// store changes immediately; call close when the program ends.
func InitialModel(store *state.Store, opts Options) model {
	if opts.Title == "" {
		opts.Title = "tunnelctl"
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := model{
		store:      store,
		bridge:     newChangeBridge(store),
		ctx:        opts.Context,
		logCh:      opts.LogChannel,
		clip:       opts.Clipboard,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		viewport:   viewport.New(0, 0),
		spinner:    s,
		title:      opts.Title,
		autoScroll: true,
	}
	m.refresh(allContainers())
	return m
}

func allContainers() map[string]bool {
	return map[string]bool{
		"connection":  true,
		"diagnostics": true,
		"logs":        true,
		"profiles":    true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.bridge.wait(),
		waitForLogEntry(m.logCh),
		m.spinner.Tick,
	)
}

// close releases the store subscriptions.
func (m model) close() {
	m.bridge.close()
}

// refresh copies the named containers out of the store.
func (m *model) refresh(changed map[string]bool) {
	if changed["connection"] {
		conn := m.store.Connection()
		m.status = conn.Status()
		m.lastError = conn.LastError()
	}
	if changed["diagnostics"] {
		diag := m.store.Diagnostics()
		m.steps = diag.Steps()
		m.summary = diag.Summary()
	}
	if changed["logs"] {
		logs := m.store.Logs()
		m.visible = logs.Visible()
		m.filter = logs.Filter()
		m.buffered = logs.Len()
		m.capacity = logs.Capacity()
		m.syncViewport()
	}
	if changed["profiles"] {
		p := m.store.Profiles()
		m.profiles = p.List()
		m.activeID = p.ActiveID()
		m.stats = p.LoadStats()
		m.clampCursor()
	}
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.profiles) {
		m.cursor = len(m.profiles) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) syncViewport() {
	m.viewport.SetContent(renderLogContent(m.visible, m.viewport.Width))
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

// setStatusMessage shows message in the footer until a newer one replaces it
// or statusMessageTTL passes.
func (m *model) setStatusMessage(message string, msgType MessageType) tea.Cmd {
	m.statusSeq++
	m.statusMessage = message
	m.statusMessageType = msgType

	seq := m.statusSeq
	return tea.Tick(statusMessageTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m model) busy() bool {
	return m.loading || m.status == state.StatusStarting
}
