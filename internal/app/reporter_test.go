package app

import (
	"testing"

	"tunnelctl/internal/events"
	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"

	"github.com/stretchr/testify/assert"
)

func TestCLIReporter(t *testing.T) {
	out := &syncBuffer{}
	logging.InitForCLI(logging.LevelInfo, out)

	store := state.NewStore(state.DefaultOptions())
	bus := events.NewBus()
	defer bus.Close()
	store.Attach(bus)

	r := newCLIReporter(store, bus)

	ping := state.DiagnosticStep{ID: state.StepPing, Status: state.StepFail, Message: "no reply"}
	bus.Publish(events.MustEvent(events.TopicConnectionState, "starting"))
	bus.Publish(events.MustEvent(events.TopicDiagStep, ping))
	bus.Publish(events.MustEvent(events.TopicDiagStep, state.DiagnosticStep{ID: state.StepConnect, Status: state.StepRunning}))
	bus.Publish(events.MustEvent(events.TopicConnectionError, "handshake timeout"))
	bus.Publish(events.MustEvent(events.TopicLogLine, "[WARN] retrying"))

	logs := out.String()
	assert.Contains(t, logs, "Status: idle")
	assert.Contains(t, logs, "Status: starting")
	assert.Contains(t, logs, "Error: handshake timeout")
	assert.Contains(t, logs, "[WARN] retrying")
	assert.Equal(t, 1, out.Count("ping: fail no reply"), "unchanged steps are not repeated")
	assert.Equal(t, 1, out.Count("connect: running"))

	// A new run reports the same step again.
	store.ResetDiagnostics()
	bus.Publish(events.MustEvent(events.TopicDiagStep, ping))
	assert.Equal(t, 2, out.Count("ping: fail no reply"))

	r.close()
	bus.Publish(events.MustEvent(events.TopicLogLine, "after close"))
	assert.NotContains(t, out.String(), "after close")
}
