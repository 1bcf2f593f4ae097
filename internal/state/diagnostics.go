package state

import (
	"errors"
	"fmt"
	"sync"
)

// StepStatus is the outcome of one diagnostic step.
type StepStatus string

const (
	StepRunning StepStatus = "running"
	StepPass    StepStatus = "pass"
	StepFail    StepStatus = "fail"
	StepSkip    StepStatus = "skip"
	StepWarn    StepStatus = "warn"
)

// Step IDs emitted by the backend diagnostic run, in execution order.
const (
	StepNetwork  = "network"
	StepNpcap    = "npcap"
	StepPing     = "ping"
	StepConnect  = "connect"
	StepVerify   = "verify"
	StepDiagnose = "diagnose"
)

// StepCatalogue lists the known step IDs in the order the backend runs them.
func StepCatalogue() []string {
	return []string{StepNetwork, StepNpcap, StepPing, StepConnect, StepVerify, StepDiagnose}
}

// ParseStepStatus validates a step status received from the backend.
func ParseStepStatus(s string) (StepStatus, error) {
	switch v := StepStatus(s); v {
	case StepRunning, StepPass, StepFail, StepSkip, StepWarn:
		return v, nil
	}
	return "", fmt.Errorf("unknown step status %q", s)
}

// DiagnosticStep is the latest report for one step.
type DiagnosticStep struct {
	ID      string     `json:"id"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
}

// Validate checks the step carries an ID and a known status.
func (s DiagnosticStep) Validate() error {
	if s.ID == "" {
		return errors.New("diagnostic step without id")
	}
	if _, err := ParseStepStatus(string(s.Status)); err != nil {
		return err
	}
	return nil
}

// StepSummary counts steps per status.
type StepSummary struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	Skip    int `json:"skip"`
	Warn    int `json:"warn"`
}

// Done reports whether steps were recorded and none is still running.
func (s StepSummary) Done() bool {
	return s.Total > 0 && s.Running == 0
}

// Success reports a finished run without failures.
func (s StepSummary) Success() bool {
	return s.Done() && s.Fail == 0
}

// Diagnostics tracks the ordered list of diagnostic steps. Each ID appears at
// most once and keeps the position of its first report.
type Diagnostics struct {
	emitMu sync.Mutex
	mu     sync.RWMutex

	steps []DiagnosticStep
	index map[string]int

	stepsObs observers[[]DiagnosticStep]
	changed  signal
}

// NewDiagnostics returns an empty tracker.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{index: make(map[string]int)}
}

// Steps returns a copy of the current steps in first-seen order.
func (d *Diagnostics) Steps() []DiagnosticStep {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot()
}

func (d *Diagnostics) snapshot() []DiagnosticStep {
	out := make([]DiagnosticStep, len(d.steps))
	copy(out, d.steps)
	return out
}

// Step looks up a step by ID.
func (d *Diagnostics) Step(id string) (DiagnosticStep, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[id]
	if !ok {
		return DiagnosticStep{}, false
	}
	return d.steps[i], true
}

// Summary returns per-status counts.
func (d *Diagnostics) Summary() StepSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sum := StepSummary{Total: len(d.steps)}
	for _, s := range d.steps {
		switch s.Status {
		case StepRunning:
			sum.Running++
		case StepPass:
			sum.Pass++
		case StepFail:
			sum.Fail++
		case StepSkip:
			sum.Skip++
		case StepWarn:
			sum.Warn++
		}
	}
	return sum
}

// Subscribe calls fn with the current steps and again after every change.
func (d *Diagnostics) Subscribe(fn func([]DiagnosticStep)) *Subscription {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	sub := d.stepsObs.add(fn)
	fn(d.Steps())
	return sub
}

// SubscribeChanges calls fn after every change, without a value.
func (d *Diagnostics) SubscribeChanges(fn func()) *Subscription {
	return onSignal(&d.changed, fn)
}

// OnStepEvent records a step report. A known ID is replaced in place, an
// unseen ID is appended. Re-applying an identical report changes nothing.
func (d *Diagnostics) OnStepEvent(step DiagnosticStep) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if i, ok := d.index[step.ID]; ok {
		if d.steps[i] == step {
			d.mu.Unlock()
			return
		}
		d.steps[i] = step
	} else {
		d.index[step.ID] = len(d.steps)
		d.steps = append(d.steps, step)
	}
	snap := d.snapshot()
	d.mu.Unlock()

	d.emit(snap)
}

// Reset drops all steps, typically before a new diagnostic run.
func (d *Diagnostics) Reset() {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	wasEmpty := len(d.steps) == 0
	d.steps = nil
	d.index = make(map[string]int)
	d.mu.Unlock()

	if !wasEmpty {
		d.emit([]DiagnosticStep{})
	}
}

func (d *Diagnostics) emit(steps []DiagnosticStep) {
	d.stepsObs.emit(steps)
	notify(&d.changed)
}
