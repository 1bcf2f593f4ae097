package cmd

import (
	"tunnelctl/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		debug     bool
		transport string
		port      int
		replay    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tunnel state to AI assistants over MCP",
		Long: `Starts the configured tunnel backend and exposes its state as MCP tools:
connection status, diagnostic steps, log lines and filters, connection
profiles, event bus metrics and the effective configuration.

The stdio transport (default) is meant to be launched by the MCP client.
With --transport sse the server listens on mcp.host:mcp.port.

All logging goes to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.NewConfig(app.ModeMCP, debug)
			cfg.ConfigPath = configPath
			cfg.ReplayPath = replay
			cfg.Version = rootCmd.Version
			cfg.MCPTransport = transport
			cfg.MCPPort = port
			return runApplication(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "", "MCP transport: stdio or sse (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "Port for the sse transport (default from config)")
	cmd.Flags().StringVar(&replay, "replay", "", "Replay events from a file instead of starting the backend")
	return cmd
}
