package tui

import (
	"fmt"
	"strings"

	"tunnelctl/pkg/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update is the heart of the dashboard and handles all incoming messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resize()
		return m, nil

	case storeChangedMsg:
		m.refresh(msg.containers)
		return m, m.bridge.wait()

	case logEntryMsg:
		entry := logging.LogEntry(msg)
		m.lastLogEntry = entry.String()
		cmds := []tea.Cmd{waitForLogEntry(m.logCh)}
		switch {
		case entry.Level >= logging.LevelError:
			cmds = append(cmds, m.setStatusMessage(entry.String(), StatusMsgError))
		case entry.Level == logging.LevelWarn:
			cmds = append(cmds, m.setStatusMessage(entry.String(), StatusMsgWarning))
		}
		return m, tea.Batch(cmds...)

	case profilesLoadedMsg:
		m.loading = false
		if msg.err != "" {
			return m, m.setStatusMessage("Profile reload failed: "+msg.err, StatusMsgError)
		}
		return m, m.setStatusMessage(fmt.Sprintf("Loaded %d profiles", msg.count), StatusMsgSuccess)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMessage = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Mouse wheel and anything else the viewport understands.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.profiles)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.profiles) == 0 {
			return m, m.setStatusMessage("No profiles loaded", StatusMsgWarning)
		}
		p := m.profiles[m.cursor]
		m.store.SelectProfile(p.ID)
		return m, m.setStatusMessage("Active profile: "+p.DisplayName(), StatusMsgInfo)

	case key.Matches(msg, m.keys.ReloadProfile):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadProfiles(), m.spinner.Tick)

	case key.Matches(msg, m.keys.CycleFilter):
		next := m.filter.Next()
		if err := m.store.SetLogFilter(next); err != nil {
			return m, m.setStatusMessage(err.Error(), StatusMsgError)
		}
		return m, m.setStatusMessage("Log filter: "+string(next), StatusMsgInfo)

	case key.Matches(msg, m.keys.ClearLogs):
		m.store.ClearLogs()
		return m, m.setStatusMessage("Logs cleared", StatusMsgInfo)

	case key.Matches(msg, m.keys.ResetDiag):
		m.store.ResetDiagnostics()
		return m, m.setStatusMessage("Diagnostics reset", StatusMsgInfo)

	case key.Matches(msg, m.keys.CopyLogs):
		return m, m.copyLogs()

	case key.Matches(msg, m.keys.AutoScroll):
		m.autoScroll = !m.autoScroll
		if m.autoScroll {
			m.viewport.GotoBottom()
			return m, m.setStatusMessage("Autoscroll on", StatusMsgInfo)
		}
		return m, m.setStatusMessage("Autoscroll off", StatusMsgInfo)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.LineUp(halfPage(m.viewport.Height))
		m.autoScroll = false
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.LineDown(halfPage(m.viewport.Height))
		return m, nil
	}
	return m, nil
}

// copyLogs copies the currently visible log lines to the clipboard.
func (m *model) copyLogs() tea.Cmd {
	if len(m.visible) == 0 {
		return m.setStatusMessage("Nothing to copy", StatusMsgWarning)
	}
	if err := m.clip.WriteAll(strings.Join(m.visible, "\n")); err != nil {
		logging.Error("TUI", err, "Failed to copy logs to clipboard")
		return m.setStatusMessage("Copy failed: "+err.Error(), StatusMsgError)
	}
	return m.setStatusMessage(fmt.Sprintf("Copied %d log lines", len(m.visible)), StatusMsgSuccess)
}

// loadProfiles reloads the registry off the update loop. Failures are already
// logged by the store; the message only drives the status line.
func (m model) loadProfiles() tea.Cmd {
	store := m.store
	ctx := m.ctx
	return func() tea.Msg {
		n, err := store.ReloadProfiles(ctx)
		if err != nil {
			return profilesLoadedMsg{err: err.Error()}
		}
		return profilesLoadedMsg{count: n}
	}
}

func halfPage(height int) int {
	if height < 2 {
		return 1
	}
	return height / 2
}

// resize lays the log viewport into the space the other panels leave.
func (m *model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = logContentWidth(m.width)
	m.viewport.Height = m.logViewportHeight()
	m.syncViewport()
}
