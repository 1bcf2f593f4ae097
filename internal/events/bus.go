package events

import (
	"fmt"
	"sync"
	"time"

	"tunnelctl/pkg/logging"

	"github.com/google/uuid"
)

// Handler processes one event. Handlers run synchronously on the publishing
// goroutine and must not call Publish themselves.
type Handler func(Event)

// Filter decides whether a subscription sees an event.
type Filter func(Event) bool

// Subscription is a registered handler. Closing it detaches the handler.
type Subscription struct {
	ID      string
	Filter  Filter
	Handler Handler
	closed  bool
	mu      sync.RWMutex
}

// Close marks the subscription closed; the bus drops it on the next publish.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// IsClosed returns whether the subscription is closed
func (s *Subscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Bus delivers named backend events to registered handlers.
type Bus interface {
	// Publish delivers event to every matching subscription in subscription order.
	Publish(event Event)

	// Subscribe registers handler for events accepted by filter (nil = all).
	Subscribe(filter Filter, handler Handler) *Subscription

	// Unsubscribe removes a subscription
	Unsubscribe(subscription *Subscription)

	// Reject records an event a consumer could not decode.
	Reject(event Event, err error)

	// GetMetrics returns event bus metrics
	GetMetrics() Metrics

	// Close closes the event bus and all subscriptions
	Close()
}

// Metrics tracks event bus activity.
type Metrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	EventsPublished     int64
	EventsDelivered     int64
	EventsRejected      int64
	HandlerPanics       int64
	LastEventTime       time.Time
	EventsByTopic       map[Topic]int64
}

// DefaultBus is an in-process Bus with synchronous, ordered delivery.
// Publishes are serialized, so every handler runs to completion before the
// next event is dispatched.
type DefaultBus struct {
	subscriptions []*Subscription
	metrics       Metrics
	mu            sync.RWMutex
	dispatchMu    sync.Mutex
	closed        bool
}

// NewBus creates a new event bus
func NewBus() *DefaultBus {
	return &DefaultBus{
		metrics: Metrics{
			EventsByTopic: make(map[Topic]int64),
		},
	}
}

// Publish delivers event to all matching subscribers.
func (b *DefaultBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	live := b.subscriptions[:0]
	for _, sub := range b.subscriptions {
		if sub.IsClosed() {
			b.metrics.ActiveSubscriptions--
			continue
		}
		live = append(live, sub)
	}
	b.subscriptions = live
	snapshot := make([]*Subscription, len(live))
	copy(snapshot, live)
	b.mu.Unlock()

	delivered := 0
	panics := 0
	for _, sub := range snapshot {
		if sub.Filter != nil && !sub.Filter(event) {
			continue
		}
		if sub.Handler == nil {
			continue
		}
		if b.deliver(sub, event) {
			delivered++
		} else {
			panics++
		}
	}

	b.mu.Lock()
	b.metrics.EventsPublished++
	b.metrics.EventsByTopic[event.Topic]++
	b.metrics.LastEventTime = event.Timestamp
	b.metrics.EventsDelivered += int64(delivered)
	b.metrics.HandlerPanics += int64(panics)
	b.mu.Unlock()
}

func (b *DefaultBus) deliver(sub *Subscription, event Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Events", fmt.Errorf("%v", r), "Handler %s panicked on %s", sub.ID, event.Topic)
			ok = false
		}
	}()
	sub.Handler(event)
	return true
}

// Subscribe creates a subscription with a handler function
func (b *DefaultBus) Subscribe(filter Filter, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	sub := &Subscription{
		ID:      uuid.NewString(),
		Filter:  filter,
		Handler: handler,
	}

	b.subscriptions = append(b.subscriptions, sub)
	b.metrics.TotalSubscriptions++
	b.metrics.ActiveSubscriptions++

	return sub
}

// Unsubscribe removes a subscription
func (b *DefaultBus) Unsubscribe(subscription *Subscription) {
	if subscription == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscriptions {
		if sub == subscription {
			subscription.Close()
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			b.metrics.ActiveSubscriptions--
			return
		}
	}
}

// Reject logs and counts an event that failed validation at the boundary.
func (b *DefaultBus) Reject(event Event, err error) {
	logging.Warn("Events", "Rejected %s: %v", event, err)

	b.mu.Lock()
	b.metrics.EventsRejected++
	b.mu.Unlock()
}

// GetMetrics returns event bus metrics
func (b *DefaultBus) GetMetrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metrics := b.metrics
	metrics.EventsByTopic = make(map[Topic]int64, len(b.metrics.EventsByTopic))
	for k, v := range b.metrics.EventsByTopic {
		metrics.EventsByTopic[k] = v
	}
	return metrics
}

// Close closes the event bus and all subscriptions
func (b *DefaultBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for _, sub := range b.subscriptions {
		sub.Close()
	}
	b.subscriptions = nil
	b.metrics.ActiveSubscriptions = 0
}

// FilterByTopic creates a filter that matches events of specific topics
func FilterByTopic(topics ...Topic) Filter {
	set := make(map[Topic]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return func(event Event) bool {
		return set[event.Topic]
	}
}

// AnyFilter combines multiple filters with OR logic
func AnyFilter(filters ...Filter) Filter {
	return func(event Event) bool {
		for _, f := range filters {
			if f(event) {
				return true
			}
		}
		return false
	}
}
