package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"tunnelctl/internal/events"
	"tunnelctl/pkg/logging"
)

// ErrAlreadyRunning is returned by Start while a previous run is still active.
var ErrAlreadyRunning = errors.New("backend already running")

// stopGrace is how long a stopped backend may take to exit after the
// interrupt before it is killed.
const stopGrace = 3 * time.Second

// Config describes how to launch the backend.
type Config struct {
	Command []string
	Env     map[string]string
	WorkDir string
}

// Process supervises one backend process. Its stdout is decoded as an event
// stream, its stderr is forwarded line by line as log lines, and its exit is
// reported as a connection state.
type Process struct {
	cfg Config
	bus events.Bus

	mu       sync.Mutex
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	done     chan struct{}
	stopping bool
	exitErr  error
}

// New creates a supervisor publishing onto bus. Nothing runs until Start.
func New(cfg Config, bus events.Bus) *Process {
	return &Process{cfg: cfg, bus: bus}
}

// Start launches the backend. It returns once the process is running; the
// process is supervised in the background until it exits or Stop is called.
func (p *Process) Start(ctx context.Context) error {
	if len(p.cfg.Command) == 0 {
		return errors.New("no backend command configured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		select {
		case <-p.done:
		default:
			return ErrAlreadyRunning
		}
	}

	p.publish(events.TopicConnectionState, "starting")

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, p.cfg.Command[0], p.cfg.Command[1:]...)
	cmd.Dir = p.cfg.WorkDir
	cmd.Env = os.Environ()
	for k, v := range p.cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = stopGrace

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return p.startFailed(fmt.Errorf("stdout pipe: %w", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return p.startFailed(fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return p.startFailed(fmt.Errorf("failed to start %s: %w", p.cfg.Command[0], err))
	}

	logging.Info("Backend", "Started %v (PID: %d)", p.cfg.Command, cmd.Process.Pid)

	p.cmd = cmd
	p.cancel = cancel
	p.done = make(chan struct{})
	p.stopping = false
	p.exitErr = nil

	go p.supervise(runCtx, cmd, stdoutPipe, stderrPipe, p.done)
	return nil
}

func (p *Process) supervise(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.ReadCloser, done chan struct{}) {
	defer close(done)

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		if err := events.NewStreamReader(p.bus).Run(ctx, stdout); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn("Backend", "stdout: %v", err)
		}
	}()
	go func() {
		defer readers.Done()
		p.forwardLines(stderr)
	}()

	readersDone := make(chan struct{})
	go func() {
		readers.Wait()
		close(readersDone)
	}()

	// Wait must not be called before the pipes are drained.
	select {
	case <-readersDone:
	case <-ctx.Done():
		select {
		case <-readersDone:
		case <-time.After(stopGrace):
			// A descendant still holds the pipes open.
			stdout.Close()
			stderr.Close()
			<-readersDone
		}
	}
	err := cmd.Wait()

	p.mu.Lock()
	// A cancelled parent context counts as a requested stop.
	stopping := p.stopping || ctx.Err() != nil
	p.exitErr = err
	p.cmd = nil
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	switch {
	case stopping:
		logging.Info("Backend", "Stopped (PID: %d)", cmd.Process.Pid)
		p.publish(events.TopicConnectionState, "idle")
	case err != nil:
		msg := fmt.Sprintf("backend exited: %v", err)
		logging.Error("Backend", err, "Backend (PID: %d) exited", cmd.Process.Pid)
		p.publish(events.TopicConnectionError, msg)
		p.publish(events.TopicConnectionState, "error")
	default:
		logging.Info("Backend", "Exited (PID: %d)", cmd.Process.Pid)
		p.publish(events.TopicConnectionState, "idle")
	}
}

// forwardLines publishes every stderr line verbatim as a log line.
func (p *Process) forwardLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			p.publish(events.TopicLogLine, line)
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Warn("Backend", "stderr: %v", err)
	}
}

// Stop asks the backend to exit and kills it if it does not within the
// grace period. Stopping an idle supervisor is a no-op.
func (p *Process) Stop() error {
	p.mu.Lock()
	if p.cmd == nil || p.cancel == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopping = true
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Wait blocks until the current run has finished and returns its exit error.
// A run ended by Stop reports the interrupt error of the process.
func (p *Process) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Running reports whether a backend process is currently supervised.
func (p *Process) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// PID returns the process ID of the running backend, or 0.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) startFailed(err error) error {
	p.publish(events.TopicConnectionError, err.Error())
	p.publish(events.TopicConnectionState, "error")
	return err
}

func (p *Process) publish(topic events.Topic, data string) {
	p.bus.Publish(events.MustEvent(topic, data))
}
