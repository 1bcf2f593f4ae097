package state

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is returned by every Subscribe method. Close detaches the
// callback; it is safe to call more than once.
type Subscription struct {
	ID     string
	once   sync.Once
	cancel func()
}

// Close removes the subscription.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

type observer[T any] struct {
	id     string
	fn     func(T)
	closed atomic.Bool
}

// observers is the subscriber list of one observable value.
type observers[T any] struct {
	mu   sync.Mutex
	list []*observer[T]
}

func (o *observers[T]) add(fn func(T)) *Subscription {
	obs := &observer[T]{id: uuid.NewString(), fn: fn}

	o.mu.Lock()
	o.list = append(o.list, obs)
	o.mu.Unlock()

	return &Subscription{
		ID: obs.id,
		cancel: func() {
			obs.closed.Store(true)
			o.remove(obs.id)
		},
	}
}

func (o *observers[T]) remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, obs := range o.list {
		if obs.id == id {
			o.list = append(o.list[:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.list)
}

// emit calls every live observer with v in subscription order.
func (o *observers[T]) emit(v T) {
	o.mu.Lock()
	snapshot := make([]*observer[T], len(o.list))
	copy(snapshot, o.list)
	o.mu.Unlock()

	for _, obs := range snapshot {
		if !obs.closed.Load() {
			obs.fn(v)
		}
	}
}

// signal is a value-less change notification, fired after every mutation of a
// container. It lets consumers coalesce updates and pull snapshots lazily.
type signal = observers[struct{}]

func notify(s *signal) {
	s.emit(struct{}{})
}

func onSignal(s *signal, fn func()) *Subscription {
	return s.add(func(struct{}) { fn() })
}
