package state

import (
	"context"
	"fmt"
	"sync"

	"tunnelctl/internal/events"
	"tunnelctl/pkg/logging"

	"github.com/google/uuid"
)

// Options configures a Store.
type Options struct {
	// LogCapacity bounds the log buffer. Zero means DefaultLogCapacity.
	LogCapacity int
	// LogFilter is the initial filter. Empty means FilterAll.
	LogFilter LogFilter
	// ClearErrorOnRecovery clears the last error when the connection leaves
	// the error state.
	ClearErrorOnRecovery bool
	// Source supplies profiles for LoadProfiles.
	Source ProfileSource
	// ErrorSink optionally receives profile load failures.
	ErrorSink ErrorSink
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		LogCapacity:          DefaultLogCapacity,
		LogFilter:            FilterAll,
		ClearErrorOnRecovery: true,
	}
}

// Store groups the four state containers behind one presentation surface.
type Store struct {
	opts Options

	connection  *Connection
	diagnostics *Diagnostics
	logs        *Logs
	profiles    *Profiles
}

// NewStore builds a store with fresh containers.
func NewStore(opts Options) *Store {
	s := &Store{opts: opts}
	s.connection = NewConnection(opts.ClearErrorOnRecovery)
	s.diagnostics = NewDiagnostics()
	s.logs = NewLogs(opts.LogCapacity, opts.LogFilter)
	s.profiles = NewProfiles(opts.Source, opts.ErrorSink)
	return s
}

// Connection returns the connection status container.
func (s *Store) Connection() *Connection { return s.connection }

// Diagnostics returns the diagnostic step tracker.
func (s *Store) Diagnostics() *Diagnostics { return s.diagnostics }

// Logs returns the log buffer.
func (s *Store) Logs() *Logs { return s.logs }

// Profiles returns the profile registry.
func (s *Store) Profiles() *Profiles { return s.profiles }

// ResetDiagnostics clears the diagnostic steps.
func (s *Store) ResetDiagnostics() {
	s.diagnostics.Reset()
}

// ClearLogs empties the log buffer.
func (s *Store) ClearLogs() {
	s.logs.Clear()
}

// SetLogFilter changes the visible log filter.
func (s *Store) SetLogFilter(f LogFilter) error {
	return s.logs.SetFilter(f)
}

// SelectProfile sets the active profile ID.
func (s *Store) SelectProfile(id string) {
	s.profiles.Select(id)
}

// LoadProfiles reloads the profile collection from the source. Failures are
// absorbed by the registry.
func (s *Store) LoadProfiles(ctx context.Context) {
	s.profiles.Load(ctx)
}

// ReloadProfiles reloads the profile collection and reports the outcome of
// this call. The failure is absorbed by the registry as with LoadProfiles.
func (s *Store) ReloadProfiles(ctx context.Context) (int, error) {
	return s.profiles.Reload(ctx)
}

// LoadProfilesAsync reloads profiles without blocking the caller.
func (s *Store) LoadProfilesAsync(ctx context.Context) <-chan struct{} {
	return s.profiles.LoadAsync(ctx)
}

// Reset returns every container to its initial state. The log filter goes
// back to the configured default.
func (s *Store) Reset() {
	s.connection.Reset()
	s.diagnostics.Reset()
	s.logs.Clear()
	filter := s.opts.LogFilter
	if !filter.Valid() {
		filter = FilterAll
	}
	_ = s.logs.SetFilter(filter)
	s.profiles.Reset()
}

// SubscribeChanges calls fn with the name of the container after any change.
// Names are "connection", "diagnostics", "logs" and "profiles".
func (s *Store) SubscribeChanges(fn func(container string)) []*Subscription {
	return []*Subscription{
		s.connection.SubscribeChanges(func() { fn("connection") }),
		s.diagnostics.SubscribeChanges(func() { fn("diagnostics") }),
		s.logs.SubscribeChanges(func() { fn("logs") }),
		s.profiles.SubscribeChanges(func() { fn("profiles") }),
	}
}

// Attachment is the binding between a Store and an event bus.
type Attachment struct {
	ID   string
	bus  events.Bus
	subs []*events.Subscription
	once sync.Once
}

// Detach stops applying bus events to the store. Safe to call repeatedly.
func (a *Attachment) Detach() {
	if a == nil {
		return
	}
	a.once.Do(func() {
		for _, sub := range a.subs {
			a.bus.Unsubscribe(sub)
		}
		logging.Debug("State", "Detached %s", a.ID)
	})
}

// Attach subscribes the store to backend events on bus. Payloads are
// validated here; invalid events are rejected on the bus and never reach a
// container.
func (s *Store) Attach(bus events.Bus) *Attachment {
	a := &Attachment{ID: uuid.NewString(), bus: bus}

	a.subscribe(events.TopicConnectionState, func(ev events.Event) error {
		raw, err := events.DecodeString(ev)
		if err != nil {
			return err
		}
		status, err := ParseConnectionStatus(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", events.ErrInvalidPayload, err)
		}
		s.connection.OnConnectionEvent(status)
		return nil
	})

	a.subscribe(events.TopicConnectionError, func(ev events.Event) error {
		msg, err := events.DecodeString(ev)
		if err != nil {
			return err
		}
		s.connection.OnErrorEvent(msg)
		return nil
	})

	a.subscribe(events.TopicDiagStep, func(ev events.Event) error {
		step, err := events.Decode[DiagnosticStep](ev)
		if err != nil {
			return err
		}
		if err := step.Validate(); err != nil {
			return fmt.Errorf("%w: %v", events.ErrInvalidPayload, err)
		}
		s.diagnostics.OnStepEvent(step)
		return nil
	})

	a.subscribe(events.TopicLogLine, func(ev events.Event) error {
		line, err := events.DecodeString(ev)
		if err != nil {
			return err
		}
		s.logs.Append(line)
		return nil
	})

	logging.Debug("State", "Attached %s to event bus", a.ID)
	return a
}

func (a *Attachment) subscribe(topic events.Topic, apply func(events.Event) error) {
	sub := a.bus.Subscribe(events.FilterByTopic(topic), func(ev events.Event) {
		if err := apply(ev); err != nil {
			a.bus.Reject(ev, err)
		}
	})
	if sub != nil {
		a.subs = append(a.subs, sub)
	}
}
