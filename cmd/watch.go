package cmd

import (
	"context"
	"fmt"

	"tunnelctl/internal/app"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		noTUI      bool
		debug      bool
		replayPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Start the backend and watch its state in an interactive dashboard",
		Long: `Starts the configured tunnel backend and shows its connection status,
diagnostic steps, log output and connection profiles.

1. Interactive TUI Mode (default):
   - Header with the connection status and the last error.
   - Profiles and diagnostics panels, filtered log view.
   - f cycles the log filter, l reloads profiles, enter activates a profile,
     y copies the visible log lines, h shows all keys.

2. Non-TUI / CLI Mode (using --no-tui flag):
   - Writes status changes, diagnostic steps and backend log lines to stderr.
   - Runs until the backend exits or Ctrl+C is pressed.

Use --replay to feed a captured event stream (one JSON envelope per line)
instead of starting the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := app.ModeTUI
			if noTUI {
				mode = app.ModeCLI
			}
			cfg := app.NewConfig(mode, debug)
			cfg.ConfigPath = configPath
			cfg.ReplayPath = replayPath
			cfg.Version = rootCmd.Version
			return runApplication(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the TUI and log state changes instead")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&replayPath, "replay", "", "Replay events from a file instead of starting the backend")
	return cmd
}

// runApplication builds and runs the application for cfg.
func runApplication(cmd *cobra.Command, cfg *app.Config) error {
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
