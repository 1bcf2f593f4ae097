package tui

import (
	"tunnelctl/internal/color"
	"tunnelctl/internal/state"

	"github.com/charmbracelet/lipgloss"
)

const (
	// panelRows is the number of content rows in the profile and diagnostics panels.
	panelRows = 6
	// minLogRows keeps the log panel usable on short terminals.
	minLogRows = 3
)

var spinnerStyle = color.InfoStyle

// statusBadge renders the connection status. spin is shown while starting.
func statusBadge(status state.ConnectionStatus, spin string) string {
	switch status {
	case state.StatusConnected:
		return color.SuccessStyle.Render("● connected")
	case state.StatusStarting:
		return color.WarningStyle.Render(spin + " starting")
	case state.StatusError:
		return color.ErrorStyle.Render("✗ error")
	default:
		return color.MutedStyle.Render("○ idle")
	}
}

func stepIcon(status state.StepStatus) string {
	switch status {
	case state.StepPass:
		return color.SuccessStyle.Render("✓")
	case state.StepFail:
		return color.ErrorStyle.Render("✗")
	case state.StepWarn:
		return color.WarningStyle.Render("!")
	case state.StepSkip:
		return color.MutedStyle.Render("-")
	default:
		return color.InfoStyle.Render("…")
	}
}

func statusLineStyle(t MessageType) lipgloss.Style {
	switch t {
	case StatusMsgSuccess:
		return color.SuccessStyle
	case StatusMsgWarning:
		return color.WarningStyle
	case StatusMsgError:
		return color.ErrorStyle
	default:
		return color.InfoStyle
	}
}
