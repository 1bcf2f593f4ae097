package color

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	success = lipgloss.AdaptiveColor{Light: "#006600", Dark: "#8AE234"}
	warning = lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"}
	failure = lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"}
	info    = lipgloss.AdaptiveColor{Light: "#0000CC", Dark: "#58A6FF"}
	muted   = lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"}
	text    = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
)

// Styles shared by the TUI and the one-shot CLI output.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#303030"}).
			Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.
				Border(lipgloss.ThickBorder()).
				BorderForeground(info)

	PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(text)

	MutedStyle   = lipgloss.NewStyle().Foreground(muted)
	SuccessStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(warning).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(info).Bold(true)

	LogInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#E0E0E0"})
	LogWarnStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	LogErrorStyle = lipgloss.NewStyle().Foreground(failure).Bold(true)
	LogDebugStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(text).
				Background(lipgloss.AdaptiveColor{Light: "#E8E8FF", Dark: "#1E293B"})

	FooterStyle = lipgloss.NewStyle().Foreground(muted)
)

// Initialize fixes the background assumption used by adaptive colors.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// InitializeFromEnv applies TUNNELCTL_THEME ("dark" or "light") when set and
// otherwise leaves terminal detection alone. It reports whether a theme was forced.
func InitializeFromEnv() bool {
	switch strings.ToLower(os.Getenv("TUNNELCTL_THEME")) {
	case "dark":
		Initialize(true)
		return true
	case "light":
		Initialize(false)
		return true
	}
	return false
}

// LogLineStyle picks a style from level keywords in a backend log line.
func LogLineStyle(line string) lipgloss.Style {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"):
		return LogErrorStyle
	case strings.Contains(lower, "warn"):
		return LogWarnStyle
	case strings.Contains(lower, "debug"):
		return LogDebugStyle
	default:
		return LogInfoStyle
	}
}
