package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"tunnelctl/internal/color"
	"tunnelctl/internal/mcpapi"
	"tunnelctl/internal/tui"
	"tunnelctl/pkg/logging"
)

// runCLIMode logs state changes until interrupted or the backend exits.
func runCLIMode(ctx context.Context, config *Config, services *Services) error {
	logging.Info("CLI", "Running in no-TUI mode.")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := newCLIReporter(services.Store, services.Bus)
	defer reporter.close()

	if err := services.Start(ctx); err != nil {
		logging.Error("CLI", err, "Failed to start event source")
		services.Stop()
		return err
	}
	defer services.Stop()

	if services.Backend != nil {
		go func() {
			if err := services.Backend.Wait(); err != nil && ctx.Err() == nil {
				logging.Warn("CLI", "Backend exited: %v", err)
			}
			stop()
		}()
	}

	logging.Info("CLI", "Press Ctrl+C to stop and exit.")
	<-ctx.Done()
	logging.Info("CLI", "--- Shutting down ---")
	return nil
}

// runTUIMode executes the interactive terminal UI mode
func runTUIMode(ctx context.Context, config *Config, services *Services) error {
	color.InitializeFromEnv()

	// Switch logging to the channel so it does not draw over the alt screen.
	logChan := logging.InitForTUI(cliLogLevel(config, config.TunnelctlConfig.LogLevel()))
	defer logging.CloseTUIChannel()

	if err := services.Start(ctx); err != nil {
		// The failure is also on the connection state; keep the dashboard up.
		logging.Error("TUI-Lifecycle", err, "Failed to start event source")
	}
	defer services.Stop()

	title := "tunnelctl"
	if config.Version != "" {
		title += " " + config.Version
	}
	err := tui.Run(ctx, services.Store, tui.Options{
		Title:      title,
		Context:    ctx,
		LogChannel: logChan,
	})
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
		return err
	}
	logging.Info("TUI-Lifecycle", "TUI exited.")
	return nil
}

// runMCPMode serves the store over MCP until the client disconnects.
func runMCPMode(ctx context.Context, config *Config, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.Start(ctx); err != nil {
		// connection_status reports the failure to the client.
		logging.Error("MCP", err, "Failed to start event source")
	}
	defer services.Stop()

	srv := mcpapi.NewServer(config.TunnelctlConfig.MCP, services.Tools, services.Config)
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
