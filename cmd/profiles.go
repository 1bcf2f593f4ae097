package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"tunnelctl/internal/config"
	"tunnelctl/internal/profile"
	"tunnelctl/pkg/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func newProfilesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the connection profiles known to the backend",
		Long: `Reads the backend profile file once and prints its profiles.
The file is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.InitForCLI(logging.LevelWarn, os.Stderr)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src, err := profile.NewFileSource(cfg.Backend.ProfilesFile)
			if err != nil {
				return err
			}
			list, err := src.ListProfiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read profiles from %s: %w", src.Path, err)
			}
			return writeProfiles(cmd.OutOrStdout(), list, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}

func loadConfig() (config.TunnelctlConfig, error) {
	if configPath != "" {
		return config.LoadConfigFromPath(configPath)
	}
	return config.LoadConfig()
}

// writeProfiles prints list in the requested format. Keys and passwords are
// never printed in the table.
func writeProfiles(w io.Writer, list []profile.Profile, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case outputTable, "":
		if len(list) == 0 {
			_, err := fmt.Fprintln(w, "No profiles found.")
			return err
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "NAME", "SERVER", "SOCKS5", "MODE", "CONN")
		for _, p := range list {
			conn := ""
			if p.Conn > 0 {
				conn = strconv.Itoa(p.Conn)
			}
			t.Row(p.ID, p.Name, p.Endpoint(), p.SocksListen, p.Mode, conn)
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
}
