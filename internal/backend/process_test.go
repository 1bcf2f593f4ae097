package backend

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"tunnelctl/internal/events"
	"tunnelctl/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// recorder captures connection states published on the bus.
type recorder struct {
	mu     sync.Mutex
	states []string
}

func (r *recorder) attach(bus events.Bus) {
	bus.Subscribe(events.FilterByTopic(events.TopicConnectionState), func(ev events.Event) {
		s, _ := events.DecodeString(ev)
		r.mu.Lock()
		r.states = append(r.states, s)
		r.mu.Unlock()
	})
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func TestProcess_StreamsEventsIntoStore(t *testing.T) {
	requireShell(t)

	bus := events.NewBus()
	store := state.NewStore(state.DefaultOptions())
	store.Attach(bus)
	rec := &recorder{}
	rec.attach(bus)

	script := `echo '{"event":"connection:state","data":"connected"}'
echo '{"event":"diag:step","data":{"id":"ping","status":"pass","message":"12ms"}}'
echo 'plain stdout line'
echo '[WARN] from stderr' >&2`

	p := New(Config{Command: []string{"sh", "-c", script}, Env: map[string]string{"TUNNEL_TEST": "1"}}, bus)
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Wait())

	assert.Equal(t, []string{"starting", "connected", "idle"}, rec.get())
	assert.Equal(t, state.StatusIdle, store.Connection().Status())

	step, ok := store.Diagnostics().Step("ping")
	require.True(t, ok)
	assert.Equal(t, state.StepPass, step.Status)

	assert.ElementsMatch(t, []string{"plain stdout line", "[WARN] from stderr"}, store.Logs().Lines())
	assert.False(t, p.Running())
	assert.Equal(t, 0, p.PID())
}

func TestProcess_NonZeroExitReportsError(t *testing.T) {
	requireShell(t)

	bus := events.NewBus()
	store := state.NewStore(state.DefaultOptions())
	store.Attach(bus)

	p := New(Config{Command: []string{"sh", "-c", "exit 3"}}, bus)
	require.NoError(t, p.Start(context.Background()))
	err := p.Wait()
	require.Error(t, err)

	assert.Equal(t, state.StatusError, store.Connection().Status())
	assert.Contains(t, store.Connection().LastError(), "exit status 3")
}

func TestProcess_Stop(t *testing.T) {
	requireShell(t)

	bus := events.NewBus()
	rec := &recorder{}
	rec.attach(bus)

	p := New(Config{Command: []string{"sh", "-c", "exec sleep 30"}}, bus)
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.Running())
	assert.NotZero(t, p.PID())
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyRunning)

	stopped := make(chan struct{})
	go func() {
		_ = p.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}

	assert.Equal(t, []string{"starting", "idle"}, rec.get())
	assert.False(t, p.Running())
	assert.NoError(t, p.Stop(), "stopping twice is harmless")
}

func TestProcess_StartFailure(t *testing.T) {
	bus := events.NewBus()
	store := state.NewStore(state.DefaultOptions())
	store.Attach(bus)

	p := New(Config{Command: []string{"/nonexistent/tunnel-backend"}}, bus)
	err := p.Start(context.Background())
	require.Error(t, err)

	assert.Equal(t, state.StatusError, store.Connection().Status())
	assert.Contains(t, store.Connection().LastError(), "failed to start")
	assert.NoError(t, p.Wait(), "nothing ran")
}

func TestProcess_NoCommand(t *testing.T) {
	p := New(Config{}, events.NewBus())
	assert.Error(t, p.Start(context.Background()))
}
