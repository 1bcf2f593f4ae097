package app

import (
	"tunnelctl/internal/config"
)

// Mode selects how the application presents the state store.
type Mode int

const (
	// ModeTUI runs the interactive dashboard.
	ModeTUI Mode = iota
	// ModeCLI logs state changes to stderr until interrupted.
	ModeCLI
	// ModeMCP serves the state store as MCP tools.
	ModeMCP
)

// String returns the mode name used in log messages.
func (m Mode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeCLI:
		return "cli"
	case ModeMCP:
		return "mcp"
	default:
		return "unknown"
	}
}

// Config holds the application configuration
type Config struct {
	// UI mode
	Mode Mode

	// Debug settings
	Debug bool

	// ConfigPath replaces the layered configuration with a single file.
	ConfigPath string

	// ReplayPath replays a captured event stream instead of starting the backend.
	ReplayPath string

	// Version is the binary version, reported by the MCP server.
	Version string

	// MCP overrides from the command line. Zero values keep the configured ones.
	MCPTransport string
	MCPPort      int

	// Tunnelctl configuration, set by NewApplication
	TunnelctlConfig *config.TunnelctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(mode Mode, debug bool) *Config {
	return &Config{
		Mode:  mode,
		Debug: debug,
	}
}
