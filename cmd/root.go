package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// configPath replaces the layered configuration with a single file.
var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tunnelctl",
	Short: "Watch and control a local tunnel backend",
	Long: `tunnelctl supervises a local tunnel backend and shows its connection
status, diagnostic steps, log output and connection profiles in an
interactive dashboard. The same state can be served to AI assistants over MCP.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid configuration, failed backend start)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "tunnelctl version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/tunnelctl/config.yaml overlaid by ./.tunnelctl/config.yaml)")

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
