package app

import (
	"context"
	"fmt"
	"sync"

	"tunnelctl/internal/config"
	"tunnelctl/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// ConfigAdapter exposes the effective configuration to MCP clients.
type ConfigAdapter struct {
	config     *config.TunnelctlConfig
	configPath string
	mu         sync.RWMutex
}

// NewConfigAdapter creates a new configuration API adapter
func NewConfigAdapter(cfg *config.TunnelctlConfig, configPath string) *ConfigAdapter {
	return &ConfigAdapter{
		config:     cfg,
		configPath: configPath,
	}
}

// GetConfig returns a copy of the current configuration
func (a *ConfigAdapter) GetConfig() config.TunnelctlConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cp := *a.config
	cp.Backend.Command = append([]string(nil), a.config.Backend.Command...)
	cp.Backend.Env = make(map[string]string, len(a.config.Backend.Env))
	for k, v := range a.config.Backend.Env {
		cp.Backend.Env[k] = v
	}
	return cp
}

// Source describes where the configuration was loaded from.
func (a *ConfigAdapter) Source() string {
	if a.configPath != "" {
		return a.configPath
	}
	return "layered (defaults, user, project)"
}

// GetTools returns all tool definitions
func (a *ConfigAdapter) GetTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("config_get",
			mcp.WithDescription("Get the effective tunnelctl configuration as YAML"),
		),
	}
}

// Register adds the configuration tools to s.
func (a *ConfigAdapter) Register(s *server.MCPServer) {
	for _, tool := range a.GetTools() {
		s.AddTool(tool, a.HandleConfigGet)
	}
}

// HandleConfigGet handles the config_get tool call
func (a *ConfigAdapter) HandleConfigGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := a.GetConfig()
	// Backend env may carry credentials.
	for k := range cfg.Backend.Env {
		cfg.Backend.Env[k] = "<redacted>"
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		logging.Error("ConfigAdapter", err, "Failed to marshal configuration")
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal configuration: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# source: %s\n%s", a.Source(), data)), nil
}
