package config

// TunnelctlConfig is the top-level configuration structure for tunnelctl.
type TunnelctlConfig struct {
	Backend BackendConfig `yaml:"backend"`
	State   StateConfig   `yaml:"state"`
	Logging LoggingConfig `yaml:"logging"`
	MCP     MCPConfig     `yaml:"mcp"`
}

// BackendConfig describes how to start the tunnel backend and where it keeps
// its profiles.
type BackendConfig struct {
	Command      []string          `yaml:"command,omitempty"`      // Command and its arguments, e.g., ["autopaqet", "--events"]
	Env          map[string]string `yaml:"env,omitempty"`          // Extra environment variables
	WorkDir      string            `yaml:"workDir,omitempty"`      // Working directory, defaults to the current one
	ProfilesFile string            `yaml:"profilesFile,omitempty"` // profiles.json or .yaml, defaults to the backend data dir
}

// StateConfig tunes the client-side state containers.
type StateConfig struct {
	LogCapacity      int    `yaml:"logCapacity,omitempty"`      // Buffered log lines (default: 5000)
	DefaultLogFilter string `yaml:"defaultLogFilter,omitempty"` // all, info, warn or error (default: all)
	// ClearErrorOnRecovery clears the last connection error when the backend
	// leaves the error state. Nil means true.
	ClearErrorOnRecovery *bool `yaml:"clearErrorOnRecovery,omitempty"`
}

// ClearsErrorOnRecovery resolves the optional flag.
func (s StateConfig) ClearsErrorOnRecovery() bool {
	return s.ClearErrorOnRecovery == nil || *s.ClearErrorOnRecovery
}

// LoggingConfig controls pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn or error (default: info)
}

// MCPTransportStdio is the standard I/O transport.
const MCPTransportStdio = "stdio"

// MCPTransportSSE is the Server-Sent Events transport.
const MCPTransportSSE = "sse"

// MCPConfig configures the MCP server exposed by "tunnelctl serve".
type MCPConfig struct {
	Name      string `yaml:"name,omitempty"`
	Version   string `yaml:"version,omitempty"`
	Transport string `yaml:"transport,omitempty"` // stdio or sse (default: stdio)
	Host      string `yaml:"host,omitempty"`      // SSE bind host (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // SSE port (default: 8091)
}
