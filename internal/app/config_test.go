package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		debug bool
	}{
		{name: "tui", mode: ModeTUI, debug: false},
		{name: "cli with debug", mode: ModeCLI, debug: true},
		{name: "mcp", mode: ModeMCP, debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.mode, tt.debug)
			assert.Equal(t, tt.mode, cfg.Mode)
			assert.Equal(t, tt.debug, cfg.Debug)
			assert.Nil(t, cfg.TunnelctlConfig, "TunnelctlConfig should be nil before loading")
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "tui", ModeTUI.String())
	assert.Equal(t, "cli", ModeCLI.String())
	assert.Equal(t, "mcp", ModeMCP.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
