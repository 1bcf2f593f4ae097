package app

import (
	"tunnelctl/internal/events"
	"tunnelctl/internal/profile"
	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"
)

// cliReporter writes state changes to the log in no-TUI mode.
type cliReporter struct {
	subs  []*state.Subscription
	lines *events.Subscription
	steps map[string]state.DiagnosticStep
}

func newCLIReporter(store *state.Store, bus events.Bus) *cliReporter {
	r := &cliReporter{steps: make(map[string]state.DiagnosticStep)}

	conn := store.Connection()
	r.subs = append(r.subs,
		conn.SubscribeStatus(func(s state.ConnectionStatus) {
			logging.Info("Connection", "Status: %s", s)
		}),
		conn.SubscribeLastError(func(msg string) {
			if msg != "" {
				logging.Warn("Connection", "Error: %s", msg)
			}
		}),
		store.Diagnostics().Subscribe(r.reportSteps),
		store.Profiles().SubscribeActive(func(p *profile.Profile) {
			if p != nil {
				logging.Info("Profiles", "Active profile: %s (%s)", p.DisplayName(), p.Endpoint())
			}
		}),
	)

	// Raw lines come straight off the bus; the store copy is bounded.
	r.lines = bus.Subscribe(events.FilterByTopic(events.TopicLogLine), func(ev events.Event) {
		if line, err := events.DecodeString(ev); err == nil {
			logging.Info("Backend", "%s", line)
		}
	})
	return r
}

// reportSteps logs each step whose record changed since the last emission.
func (r *cliReporter) reportSteps(steps []state.DiagnosticStep) {
	if len(steps) == 0 {
		r.steps = make(map[string]state.DiagnosticStep)
		return
	}
	for _, step := range steps {
		if prev, ok := r.steps[step.ID]; ok && prev == step {
			continue
		}
		r.steps[step.ID] = step
		switch step.Status {
		case state.StepFail:
			logging.Warn("Diagnostics", "%s: %s %s", step.ID, step.Status, step.Message)
		default:
			logging.Info("Diagnostics", "%s: %s %s", step.ID, step.Status, step.Message)
		}
	}
}

func (r *cliReporter) close() {
	for _, s := range r.subs {
		s.Close()
	}
	r.lines.Close()
}
