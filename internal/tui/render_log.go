package tui

import (
	"fmt"
	"strings"

	"tunnelctl/internal/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderLogContent styles each line by its level keyword and cuts it to width.
func renderLogContent(lines []string, width int) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if width > 0 {
			l = runewidth.Truncate(l, width, "…")
		}
		out[i] = color.LogLineStyle(l).Render(l)
	}
	return strings.Join(out, "\n")
}

// logContentWidth is the usable width inside the log panel.
func logContentWidth(total int) int {
	w := total - color.PanelStyle.GetHorizontalFrameSize()
	if w < 10 {
		w = 10
	}
	return w
}

func (m model) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

// logViewportHeight is what remains after the header, the top panels, the
// log panel frame and title, and the footer.
func (m model) logViewportHeight() int {
	frame := color.PanelStyle.GetVerticalFrameSize()
	h := m.height - 1 - (panelRows + 1 + frame) - (1 + frame) - m.footerHeight()
	if h < minLogRows {
		h = minLogRows
	}
	return h
}

func (m model) renderLogPanel() string {
	title := fmt.Sprintf("Logs [%s] %d/%d buffered, %d shown", m.filter, m.buffered, m.capacity, len(m.visible))
	if !m.autoScroll {
		title += color.MutedStyle.Render("  (autoscroll off)")
	}
	body := m.viewport.View()
	if len(m.visible) == 0 {
		body = lipgloss.NewStyle().Height(m.viewport.Height).Render(color.MutedStyle.Render("No log lines"))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, color.PanelTitleStyle.Render(title), body)
	return color.PanelStyle.Width(m.width - color.PanelStyle.GetHorizontalBorderSize()).Render(content)
}
