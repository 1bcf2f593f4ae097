package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tunnelctl/internal/profile"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs rootCmd with args and returns everything it printed.
// Global command state touched by a run is restored afterwards.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	originalConfig := configPath
	t.Cleanup(func() {
		configPath = originalConfig
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		if f := rootCmd.Flags().Lookup("version"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func subcommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return c
		}
	}
	require.Failf(t, "subcommand not registered", "%s", name)
	return nil
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "tunnelctl", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.Contains(t, rootCmd.Long, "supervises a local tunnel backend")
}

func TestSubcommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   map[string]string
	}{
		{"watch", map[string]string{"no-tui": "false", "debug": "false", "replay": ""}},
		{"serve", map[string]string{"debug": "false", "transport": "", "port": "0", "replay": ""}},
		{"profiles", map[string]string{"output": outputTable}},
		{"version", nil},
		{"self-update", nil},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			c := subcommand(t, tt.command)
			for name, def := range tt.flags {
				f := c.Flags().Lookup(name)
				require.NotNil(t, f, "--%s", name)
				assert.Equal(t, def, f.DefValue, "--%s default", name)
			}
			assert.NotNil(t, c.InheritedFlags().Lookup("config"), "--config reaches %s", tt.command)
		})
	}

	assert.Equal(t, "o", subcommand(t, "profiles").Flags().Lookup("output").Shorthand)
}

func TestVersionOutput(t *testing.T) {
	original := rootCmd.Version
	defer SetVersion(original)
	SetVersion("2.0.0")

	out, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "tunnelctl version 2.0.0\n", out)

	out, err = executeRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tunnelctl version 2.0.0\n", out)
}

func TestConfigFlagSelectsProfilesFile(t *testing.T) {
	dir := t.TempDir()
	profilesPath := filepath.Join(dir, "profiles.json")
	data, err := json.Marshal(sampleProfiles())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(profilesPath, data, 0644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend:\n  profilesFile: "+profilesPath+"\n"), 0644))

	out, err := executeRoot(t, "--config", cfgPath, "profiles", "-o", "json")
	require.NoError(t, err)

	var got []profile.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
}

func TestWatchWithMissingConfigFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	out, err := executeRoot(t, "--config", missing, "watch", "--no-tui")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize application")
	assert.NotContains(t, out, "Usage:")
}
