package tui

import (
	"fmt"
	"strings"

	"tunnelctl/internal/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View renders the dashboard from the model's snapshots.
func (m model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return color.MutedStyle.Render("Initializing... (waiting for window size)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTopRow(),
		m.renderLogPanel(),
		m.renderFooter(),
	)
}

func (m model) renderHeader() string {
	parts := []string{m.title, statusBadge(m.status, m.spinner.View())}
	if m.lastError != "" {
		parts = append(parts, color.ErrorStyle.Render("last error: "+m.lastError))
	}
	line := strings.Join(parts, "  │  ")
	return color.HeaderStyle.Width(m.width).MaxHeight(1).Render(line)
}

func (m model) renderTopRow() string {
	left := m.width / 2
	right := m.width - left
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderProfilesPanel(left),
		m.renderDiagnosticsPanel(right),
	)
}

func panel(width int, title string, rows []string) string {
	inner := width - color.PanelStyle.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	for i, r := range rows {
		if lipgloss.Width(r) > inner {
			rows[i] = truncateStyled(r, inner)
		}
	}
	for len(rows) < panelRows {
		rows = append(rows, "")
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		color.PanelTitleStyle.Render(runewidth.Truncate(title, inner, "…")),
		strings.Join(rows, "\n"),
	)
	return color.PanelStyle.Width(width - color.PanelStyle.GetHorizontalBorderSize()).Render(content)
}

// truncateStyled cuts a row that may contain ANSI styling to width cells.
func truncateStyled(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func (m model) renderProfilesPanel(width int) string {
	title := fmt.Sprintf("Profiles (%d)", len(m.profiles))
	if m.loading {
		title += " " + m.spinner.View() + " loading"
	}

	inner := width - color.PanelStyle.GetHorizontalFrameSize()
	var rows []string
	switch {
	case len(m.profiles) == 0 && m.stats.LastError != "":
		rows = append(rows, color.ErrorStyle.Render(runewidth.Truncate("Load failed: "+m.stats.LastError, inner, "…")))
	case len(m.profiles) == 0:
		rows = append(rows, color.MutedStyle.Render("No profiles (press l to load)"))
	default:
		start := 0
		if m.cursor >= panelRows {
			start = m.cursor - panelRows + 1
		}
		end := start + panelRows
		if end > len(m.profiles) {
			end = len(m.profiles)
		}
		for i := start; i < end; i++ {
			p := m.profiles[i]
			marker := "  "
			if p.ID == m.activeID {
				marker = color.SuccessStyle.Render("● ")
			}
			text := runewidth.Truncate(fmt.Sprintf("%s  %s", p.DisplayName(), p.Endpoint()), inner-2, "…")
			if i == m.cursor {
				text = color.SelectedRowStyle.Render(text)
			}
			rows = append(rows, marker+text)
		}
	}
	return panel(width, title, rows)
}

func (m model) renderDiagnosticsPanel(width int) string {
	s := m.summary
	title := fmt.Sprintf("Diagnostics %d/%d passed", s.Pass, s.Total)
	switch {
	case s.Fail > 0:
		title += color.ErrorStyle.Render(fmt.Sprintf("  %d failed", s.Fail))
	case s.Running > 0:
		title += color.InfoStyle.Render(fmt.Sprintf("  %d running", s.Running))
	case s.Total > 0 && s.Success():
		title += color.SuccessStyle.Render("  ok")
	}

	inner := width - color.PanelStyle.GetHorizontalFrameSize()
	var rows []string
	if len(m.steps) == 0 {
		rows = append(rows, color.MutedStyle.Render("No diagnostics yet"))
	}
	for i, step := range m.steps {
		if i == panelRows-1 && len(m.steps) > panelRows {
			rows = append(rows, color.MutedStyle.Render(fmt.Sprintf("+%d more", len(m.steps)-i)))
			break
		}
		text := step.ID
		if step.Message != "" {
			text += "  " + step.Message
		}
		rows = append(rows, stepIcon(step.Status)+" "+runewidth.Truncate(text, inner-2, "…"))
	}
	return panel(width, title, rows)
}

func (m model) renderFooter() string {
	status := color.MutedStyle.Render(m.lastLogEntry)
	if m.statusMessage != "" {
		status = statusLineStyle(m.statusMessageType).Render(m.statusMessage)
	}
	status = truncateStyled(status, m.width)
	return lipgloss.JoinVertical(lipgloss.Left, status, color.FooterStyle.Render(m.help.View(m.keys)))
}
