// Package color provides the terminal theme for tunnelctl.
//
// Colors are adaptive: each has a light and a dark variant and lipgloss picks
// one from the detected terminal background. Initialize forces the choice;
// the TUNNELCTL_THEME environment variable ("dark" or "light") does the same
// through InitializeFromEnv.
//
// Semantic styles:
//   - SuccessStyle: connected, passed steps
//   - WarningStyle: starting, warnings, skipped steps
//   - ErrorStyle: errors, failed steps
//   - InfoStyle: running steps, highlights
//   - MutedStyle: de-emphasized text
//
// LogLineStyle maps a backend log line to a style using the same level
// keywords as the log filters.
//
// NO_COLOR is honored by lipgloss itself.
package color
