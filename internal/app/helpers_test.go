package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tunnelctl/internal/config"

	"github.com/stretchr/testify/require"
)

const replayStream = `{"event":"connection:state","data":"starting"}
{"event":"diag:step","data":{"id":"ping","status":"pass","message":"12ms"}}
{"event":"log:line","data":"[INFO] socks5 listening on 127.0.0.1:1080"}
{"event":"connection:state","data":"connected"}
`

const profilesJSON = `[
  {"id": "p1", "name": "Home", "host": "203.0.113.1", "port": 9999},
  {"id": "p2", "name": "Office", "host": "203.0.113.2", "port": 9999}
]`

// syncBuffer is a bytes.Buffer safe for the logger and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Count(s string) int {
	return strings.Count(b.String(), s)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// testConfig returns an app config whose profile file lives in a temp dir.
func testConfig(t *testing.T, mode Mode) *Config {
	t.Helper()
	dir := t.TempDir()
	tc := config.GetDefaultConfig()
	tc.Backend.ProfilesFile = writeFile(t, dir, "profiles.json", profilesJSON)

	cfg := NewConfig(mode, false)
	cfg.TunnelctlConfig = &tc
	return cfg
}
