package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"tunnelctl/internal/profile"
	"tunnelctl/pkg/logging"
)

// ErrNoProfileSource is reported when profiles are loaded without a source.
var ErrNoProfileSource = errors.New("no profile source configured")

// ProfileSource supplies the full profile collection.
type ProfileSource interface {
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
}

// ErrorSink receives profile load failures in addition to the log.
type ErrorSink func(error)

// LoadStats describes the outcome of past profile loads.
type LoadStats struct {
	Loads     int       `json:"loads"`
	Failures  int       `json:"failures"`
	LastError string    `json:"lastError,omitempty"`
	LastLoad  time.Time `json:"lastLoad,omitempty"`
}

// Profiles is the registry of known profiles and the active selection.
type Profiles struct {
	emitMu sync.Mutex
	mu     sync.RWMutex

	source ProfileSource
	sink   ErrorSink

	list     []profile.Profile
	activeID string
	stats    LoadStats

	listObs     observers[[]profile.Profile]
	activeIDObs observers[string]
	activeObs   observers[*profile.Profile]
	changed     signal
}

// NewProfiles returns an empty registry reading from source. sink may be nil.
func NewProfiles(source ProfileSource, sink ErrorSink) *Profiles {
	return &Profiles{source: source, sink: sink}
}

// List returns a copy of the profile collection.
func (p *Profiles) List() []profile.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return profile.CloneAll(p.list)
}

// ActiveID returns the selected profile ID, or "" when nothing is selected.
func (p *Profiles) ActiveID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeID
}

// Active returns the selected profile, or nil when the selection is unset or
// names a profile that is not in the collection.
func (p *Profiles) Active() *profile.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active()
}

func (p *Profiles) active() *profile.Profile {
	if p.activeID == "" {
		return nil
	}
	for i := range p.list {
		if p.list[i].ID == p.activeID {
			c := p.list[i].Clone()
			return &c
		}
	}
	return nil
}

// LoadStats returns counters about past loads.
func (p *Profiles) LoadStats() LoadStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// SubscribeList calls fn with the collection and again after every load.
func (p *Profiles) SubscribeList(fn func([]profile.Profile)) *Subscription {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	sub := p.listObs.add(fn)
	fn(p.List())
	return sub
}

// SubscribeActiveID calls fn with the selected ID and again on every change.
func (p *Profiles) SubscribeActiveID(fn func(string)) *Subscription {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	sub := p.activeIDObs.add(fn)
	fn(p.ActiveID())
	return sub
}

// SubscribeActive calls fn with the active profile and again whenever the
// collection or the selection changes.
func (p *Profiles) SubscribeActive(fn func(*profile.Profile)) *Subscription {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	sub := p.activeObs.add(fn)
	fn(p.Active())
	return sub
}

// SubscribeChanges calls fn after every change, without a value.
func (p *Profiles) SubscribeChanges(fn func()) *Subscription {
	return onSignal(&p.changed, fn)
}

// Select sets the active profile ID. The ID is not checked against the
// collection; an unknown ID resolves to a nil active profile.
func (p *Profiles) Select(id string) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if p.activeID == id {
		p.mu.Unlock()
		return
	}
	p.activeID = id
	active := p.active()
	p.mu.Unlock()

	p.activeIDObs.emit(id)
	p.activeObs.emit(active)
	notify(&p.changed)
}

// Load fetches the collection from the source and replaces the registry
// contents. On failure the collection is left as it was; the error is logged
// and handed to the error sink, never returned.
func (p *Profiles) Load(ctx context.Context) {
	_, _ = p.Reload(ctx)
}

// Reload behaves like Load but also reports the outcome of this call: the
// number of profiles it applied, or the error it absorbed. Concurrent loads
// do not affect the result.
func (p *Profiles) Reload(ctx context.Context) (int, error) {
	if p.source == nil {
		p.fail(ErrNoProfileSource)
		return 0, ErrNoProfileSource
	}

	list, err := p.source.ListProfiles(ctx)
	if err != nil {
		p.fail(err)
		return 0, err
	}

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	p.list = profile.CloneAll(list)
	p.stats.Loads++
	p.stats.LastLoad = time.Now()
	snap := profile.CloneAll(p.list)
	active := p.active()
	p.mu.Unlock()

	logging.Debug("Profiles", "Loaded %d profiles", len(snap))

	p.listObs.emit(snap)
	p.activeObs.emit(active)
	notify(&p.changed)
	return len(snap), nil
}

// LoadAsync runs Load on its own goroutine. The returned channel is closed
// when the load has been applied or has failed.
func (p *Profiles) LoadAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Load(ctx)
	}()
	return done
}

// Reset empties the collection, clears the selection and the load counters.
func (p *Profiles) Reset() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	p.list = nil
	p.activeID = ""
	p.stats = LoadStats{}
	p.mu.Unlock()

	p.listObs.emit([]profile.Profile{})
	p.activeIDObs.emit("")
	p.activeObs.emit(nil)
	notify(&p.changed)
}

func (p *Profiles) fail(err error) {
	logging.Error("Profiles", err, "Failed to load profiles")

	p.emitMu.Lock()
	p.mu.Lock()
	p.stats.Failures++
	p.stats.LastError = err.Error()
	p.mu.Unlock()
	notify(&p.changed)
	p.emitMu.Unlock()

	if p.sink != nil {
		p.sink(err)
	}
}
