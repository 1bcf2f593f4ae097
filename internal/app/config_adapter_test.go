package app

import (
	"context"
	"testing"

	"tunnelctl/internal/config"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAdapter_GetConfigIsACopy(t *testing.T) {
	tc := config.GetDefaultConfig()
	tc.Backend.Command = []string{"autopaqet"}
	tc.Backend.Env["PAQET_KEY"] = "secret"
	adapter := NewConfigAdapter(&tc, "")

	cp := adapter.GetConfig()
	cp.Backend.Command[0] = "other"
	cp.Backend.Env["PAQET_KEY"] = "changed"

	assert.Equal(t, "autopaqet", tc.Backend.Command[0])
	assert.Equal(t, "secret", tc.Backend.Env["PAQET_KEY"])
}

func TestConfigAdapter_HandleConfigGet(t *testing.T) {
	tc := config.GetDefaultConfig()
	tc.Backend.Command = []string{"autopaqet", "--events"}
	tc.Backend.Env["PAQET_KEY"] = "secret"
	adapter := NewConfigAdapter(&tc, "/etc/tunnelctl.yaml")

	tools := adapter.GetTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "config_get", tools[0].Name)

	result, err := adapter.HandleConfigGet(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected TextContent")

	assert.Contains(t, text.Text, "# source: /etc/tunnelctl.yaml")
	assert.Contains(t, text.Text, "autopaqet")
	assert.Contains(t, text.Text, "<redacted>")
	assert.NotContains(t, text.Text, "secret")
	assert.Equal(t, "secret", tc.Backend.Env["PAQET_KEY"], "redaction does not touch the live config")
}

func TestConfigAdapter_Source(t *testing.T) {
	tc := config.GetDefaultConfig()
	assert.Contains(t, NewConfigAdapter(&tc, "").Source(), "layered")
}
