package tui

import (
	"context"
	"errors"
	"testing"

	"tunnelctl/internal/profile"
	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type fakeSource struct {
	list []profile.Profile
	err  error
}

func (f *fakeSource) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	return f.list, f.err
}

func newTestModel(t *testing.T, src state.ProfileSource) (model, *state.Store, *fakeClipboard) {
	t.Helper()
	opts := state.DefaultOptions()
	opts.Source = src
	store := state.NewStore(opts)
	clip := &fakeClipboard{}

	m := InitialModel(store, Options{Clipboard: clip})
	t.Cleanup(m.close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(model), store, clip
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(model)
	require.True(t, ok)
	return next, cmd
}

func press(t *testing.T, m model, keys string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	m, _ = update(t, m, msg)
	return m
}

// syncStore applies everything the store reported since the last refresh.
func syncStore(t *testing.T, m model) model {
	t.Helper()
	m, _ = update(t, m, storeChangedMsg{containers: allContainers()})
	return m
}

func testProfiles() []profile.Profile {
	return []profile.Profile{
		{ID: "p1", Name: "Home", Host: "203.0.113.1", Port: 9999},
		{ID: "p2", Name: "Office", Host: "203.0.113.2", Port: 9999},
		{ID: "p3", Host: "203.0.113.3", Port: 443},
	}
}

func TestChangeBridge_Coalesces(t *testing.T) {
	store := state.NewStore(state.DefaultOptions())
	b := newChangeBridge(store)

	store.Logs().Append("one")
	store.Logs().Append("two")
	store.ResetDiagnostics()
	store.Diagnostics().OnStepEvent(state.DiagnosticStep{ID: state.StepPing, Status: state.StepRunning})

	msg := b.wait()()
	changed, ok := msg.(storeChangedMsg)
	require.True(t, ok)
	assert.Equal(t, map[string]bool{"logs": true, "diagnostics": true}, changed.containers)

	b.close()
	b.close()
	assert.Nil(t, b.wait()())

	// Closed bridges no longer receive store changes.
	store.Logs().Append("three")
	assert.Empty(t, b.take())
}

func TestModel_ViewBeforeWindowSize(t *testing.T) {
	store := state.NewStore(state.DefaultOptions())
	m := InitialModel(store, Options{Clipboard: &fakeClipboard{}})
	defer m.close()
	assert.Contains(t, m.View(), "Initializing")
}

func TestModel_CycleFilter(t *testing.T) {
	m, store, _ := newTestModel(t, nil)

	m = press(t, m, "f")
	assert.Equal(t, state.FilterInfo, store.Logs().Filter())
	assert.Contains(t, m.statusMessage, "info")

	m = syncStore(t, m)
	m = press(t, m, "f")
	assert.Equal(t, state.FilterWarn, store.Logs().Filter())
}

func TestModel_ClearLogsAndResetDiagnostics(t *testing.T) {
	m, store, _ := newTestModel(t, nil)
	store.Logs().Append("[INFO] up")
	store.Diagnostics().OnStepEvent(state.DiagnosticStep{ID: state.StepNetwork, Status: state.StepPass})
	m = syncStore(t, m)
	require.Len(t, m.visible, 1)
	require.Len(t, m.steps, 1)

	m = press(t, m, "c")
	assert.Zero(t, store.Logs().Len())
	m = press(t, m, "r")
	assert.Empty(t, store.Diagnostics().Steps())

	m = syncStore(t, m)
	assert.Empty(t, m.visible)
	assert.Empty(t, m.steps)
}

func TestModel_CopyLogs(t *testing.T) {
	m, store, clip := newTestModel(t, nil)

	m = press(t, m, "y")
	assert.Equal(t, "Nothing to copy", m.statusMessage)

	store.Logs().Append("[ERROR] boom")
	store.Logs().Append("fine")
	require.NoError(t, store.SetLogFilter(state.FilterError))
	m = syncStore(t, m)

	m = press(t, m, "y")
	assert.Equal(t, "[ERROR] boom", clip.text)
	assert.Equal(t, "Copied 1 log lines", m.statusMessage)
	assert.Equal(t, StatusMsgSuccess, m.statusMessageType)

	clip.err = errors.New("no display")
	m = press(t, m, "y")
	assert.Equal(t, StatusMsgError, m.statusMessageType)
	assert.Contains(t, m.statusMessage, "no display")
}

func TestModel_ProfileNavigationAndSelect(t *testing.T) {
	m, store, _ := newTestModel(t, &fakeSource{list: testProfiles()})
	store.LoadProfiles(context.Background())
	m = syncStore(t, m)
	require.Len(t, m.profiles, 3)

	m = press(t, m, "j")
	m = press(t, m, "j")
	m = press(t, m, "j")
	assert.Equal(t, 2, m.cursor, "cursor stops at the last profile")

	m = press(t, m, "k")
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, "enter")
	assert.Equal(t, "p2", store.Profiles().ActiveID())
	assert.Contains(t, m.statusMessage, "Office")

	// A smaller list pulls the cursor back in range.
	store.Profiles().Reset()
	m = syncStore(t, m)
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "enter")
	assert.Equal(t, "No profiles loaded", m.statusMessage)
}

func TestModel_ReloadProfiles(t *testing.T) {
	src := &fakeSource{list: testProfiles()[:2]}
	m, _, _ := newTestModel(t, src)

	m = press(t, m, "l")
	assert.True(t, m.loading)

	msg := m.loadProfiles()()
	assert.Equal(t, profilesLoadedMsg{count: 2}, msg)
	m, _ = update(t, m, msg)
	assert.False(t, m.loading)
	assert.Equal(t, "Loaded 2 profiles", m.statusMessage)

	src.err = errors.New("permission denied")
	msg = m.loadProfiles()()
	loaded, ok := msg.(profilesLoadedMsg)
	require.True(t, ok)
	assert.Contains(t, loaded.err, "permission denied")

	m, _ = update(t, m, msg)
	assert.Equal(t, StatusMsgError, m.statusMessageType)
}

func TestModel_AutoScrollToggle(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	require.True(t, m.autoScroll)

	m = press(t, m, "a")
	assert.False(t, m.autoScroll)
	m = press(t, m, "a")
	assert.True(t, m.autoScroll)
}

func TestModel_HelpToggleShrinksLogs(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	short := m.viewport.Height

	m = press(t, m, "h")
	assert.True(t, m.help.ShowAll)
	assert.Less(t, m.viewport.Height, short)
}

func TestModel_StatusMessageExpiry(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m = press(t, m, "c")
	stale := clearStatusMsg{seq: m.statusSeq}
	m = press(t, m, "r")
	require.Equal(t, "Diagnostics reset", m.statusMessage)

	m, _ = update(t, m, stale)
	assert.Equal(t, "Diagnostics reset", m.statusMessage, "an older timer does not clear a newer message")

	m, _ = update(t, m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.statusMessage)
}

func TestModel_LogEntries(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m, _ = update(t, m, logEntryMsg{Level: logging.LevelInfo, Subsystem: "Backend", Message: "started"})
	assert.Contains(t, m.lastLogEntry, "Backend: started")
	assert.Empty(t, m.statusMessage)

	m, _ = update(t, m, logEntryMsg{Level: logging.LevelError, Subsystem: "Profiles", Message: "Failed to load profiles", Err: errors.New("boom")})
	assert.Equal(t, StatusMsgError, m.statusMessageType)
	assert.Contains(t, m.statusMessage, "boom")
}

func TestModel_LogEntryChannel(t *testing.T) {
	ch := make(chan logging.LogEntry, 1)
	ch <- logging.LogEntry{Level: logging.LevelWarn, Subsystem: "Config", Message: "ignored"}

	msg := waitForLogEntry(ch)()
	entry, ok := msg.(logEntryMsg)
	require.True(t, ok)
	assert.Equal(t, "Config", entry.Subsystem)

	close(ch)
	assert.Nil(t, waitForLogEntry(ch)())
	assert.Nil(t, waitForLogEntry(nil))
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_View(t *testing.T) {
	m, store, _ := newTestModel(t, &fakeSource{list: testProfiles()})
	store.LoadProfiles(context.Background())
	store.SelectProfile("p1")
	store.Connection().OnErrorEvent("handshake timeout")
	store.Connection().OnConnectionEvent(state.StatusError)
	store.Diagnostics().OnStepEvent(state.DiagnosticStep{ID: state.StepPing, Status: state.StepFail, Message: "no reply"})
	store.Logs().Append("[ERROR] boom")
	store.Logs().Append("[INFO] retrying")
	m = syncStore(t, m)

	view := m.View()
	assert.Contains(t, view, "tunnelctl")
	assert.Contains(t, view, "error")
	assert.Contains(t, view, "handshake timeout")
	assert.Contains(t, view, "Profiles (3)")
	assert.Contains(t, view, "Home")
	assert.Contains(t, view, "203.0.113.3:443")
	assert.Contains(t, view, "ping  no reply")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "[ERROR] boom")
	assert.Contains(t, view, "Logs [all] 2/5000 buffered, 2 shown")
}

func TestModel_ViewEmptyPanels(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	view := m.View()
	assert.Contains(t, view, "idle")
	assert.Contains(t, view, "No profiles (press l to load)")
	assert.Contains(t, view, "No diagnostics yet")
	assert.Contains(t, view, "No log lines")
}

func TestRenderLogContent_Truncates(t *testing.T) {
	out := renderLogContent([]string{"0123456789abcdef", "short"}, 8)
	assert.Contains(t, out, "0123456…")
	assert.Contains(t, out, "short")
}
