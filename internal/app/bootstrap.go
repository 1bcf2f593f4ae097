package app

import (
	"context"
	"fmt"
	"os"

	"tunnelctl/internal/config"
	"tunnelctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs tunnelctl
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the configuration and initializes the services.
func NewApplication(cfg *Config) (*Application, error) {
	// Logging goes to stderr in every mode: stdout carries the MCP stdio
	// transport.
	logging.InitForCLI(cliLogLevel(cfg, logging.LevelInfo), os.Stderr)

	var tc config.TunnelctlConfig
	var err error

	if cfg.ConfigPath != "" {
		tc, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		tc, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	if err := applyOverrides(cfg, &tc); err != nil {
		return nil, err
	}
	cfg.TunnelctlConfig = &tc

	logging.InitForCLI(cliLogLevel(cfg, tc.LogLevel()), os.Stderr)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func cliLogLevel(cfg *Config, configured logging.LogLevel) logging.LogLevel {
	if cfg.Debug {
		return logging.LevelDebug
	}
	return configured
}

// applyOverrides folds command line settings into the loaded configuration.
func applyOverrides(cfg *Config, tc *config.TunnelctlConfig) error {
	if cfg.MCPTransport != "" {
		tc.MCP.Transport = cfg.MCPTransport
	}
	if cfg.MCPPort != 0 {
		tc.MCP.Port = cfg.MCPPort
	}
	if cfg.Version != "" && (tc.MCP.Version == "" || tc.MCP.Version == "dev") {
		tc.MCP.Version = cfg.Version
	}
	if err := tc.Validate(); err != nil {
		return fmt.Errorf("invalid command line override: %w", err)
	}
	return nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run executes the application in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	switch a.config.Mode {
	case ModeTUI:
		return runTUIMode(ctx, a.config, a.services)
	case ModeCLI:
		return runCLIMode(ctx, a.config, a.services)
	case ModeMCP:
		return runMCPMode(ctx, a.config, a.services)
	default:
		return fmt.Errorf("unknown mode %d", a.config.Mode)
	}
}
