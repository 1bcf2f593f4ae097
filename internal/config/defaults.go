package config

import (
	"fmt"

	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"
)

// GetDefaultConfig returns the configuration used when no file overrides it.
// The backend command is empty: tunnelctl then only watches replayed streams.
func GetDefaultConfig() TunnelctlConfig {
	clearOnRecovery := true
	return TunnelctlConfig{
		Backend: BackendConfig{
			Env: map[string]string{},
		},
		State: StateConfig{
			LogCapacity:          state.DefaultLogCapacity,
			DefaultLogFilter:     string(state.FilterAll),
			ClearErrorOnRecovery: &clearOnRecovery,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		MCP: MCPConfig{
			Name:      "tunnelctl",
			Version:   "dev",
			Transport: MCPTransportStdio,
			Host:      "localhost",
			Port:      8091,
		},
	}
}

// Validate checks values that cannot be fixed up silently.
func (c TunnelctlConfig) Validate() error {
	if c.State.LogCapacity < 0 {
		return fmt.Errorf("state.logCapacity must be positive, got %d", c.State.LogCapacity)
	}
	if c.State.DefaultLogFilter != "" {
		if _, err := state.ParseLogFilter(c.State.DefaultLogFilter); err != nil {
			return fmt.Errorf("state.defaultLogFilter: %w", err)
		}
	}
	if c.Logging.Level != "" {
		if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
			return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
		}
	}
	switch c.MCP.Transport {
	case "", MCPTransportStdio, MCPTransportSSE:
	default:
		return fmt.Errorf("mcp.transport: unknown transport %q", c.MCP.Transport)
	}
	if c.MCP.Port < 0 || c.MCP.Port > 65535 {
		return fmt.Errorf("mcp.port out of range: %d", c.MCP.Port)
	}
	for i, arg := range c.Backend.Command {
		if arg == "" {
			return fmt.Errorf("backend.command[%d] is empty", i)
		}
	}
	return nil
}

// StateOptions converts the state section into store options.
func (c TunnelctlConfig) StateOptions() state.Options {
	opts := state.DefaultOptions()
	if c.State.LogCapacity > 0 {
		opts.LogCapacity = c.State.LogCapacity
	}
	if f, err := state.ParseLogFilter(c.State.DefaultLogFilter); err == nil {
		opts.LogFilter = f
	}
	opts.ClearErrorOnRecovery = c.State.ClearsErrorOnRecovery()
	return opts
}

// LogLevel resolves the configured log level, defaulting to info.
func (c TunnelctlConfig) LogLevel() logging.LogLevel {
	if lvl, ok := logging.ParseLevel(c.Logging.Level); ok {
		return lvl
	}
	return logging.LevelInfo
}
