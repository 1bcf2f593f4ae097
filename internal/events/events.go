package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// Topic names a backend event stream.
type Topic string

const (
	// TopicConnectionState carries the connection lifecycle state as a JSON string.
	TopicConnectionState Topic = "connection:state"
	// TopicConnectionError carries the last connection error message as a JSON string.
	TopicConnectionError Topic = "connection:error"
	// TopicDiagStep carries a diagnostic step record.
	TopicDiagStep Topic = "diag:step"
	// TopicLogLine carries one backend log line as a JSON string.
	TopicLogLine Topic = "log:line"
)

var (
	// ErrUnknownTopic is returned for envelopes naming a topic nobody consumes.
	ErrUnknownTopic = errors.New("unknown event topic")
	// ErrInvalidPayload is returned when a payload does not match its topic's shape.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// KnownTopics lists every topic this layer consumes.
func KnownTopics() []Topic {
	return []Topic{TopicConnectionState, TopicConnectionError, TopicDiagStep, TopicLogLine}
}

// IsKnown reports whether t is one of KnownTopics.
func (t Topic) IsKnown() bool {
	switch t {
	case TopicConnectionState, TopicConnectionError, TopicDiagStep, TopicLogLine:
		return true
	}
	return false
}

// String makes Topic satisfy the fmt.Stringer interface.
func (t Topic) String() string {
	return string(t)
}

// Event is one push from the backend. The payload stays raw until the
// consuming container decodes it.
type Event struct {
	Topic     Topic           `json:"event"`
	Payload   json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"-"`
}

// NewEvent marshals data into an event for topic.
func NewEvent(topic Topic, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}
	return Event{Topic: topic, Payload: raw, Timestamp: time.Now()}, nil
}

// MustEvent is NewEvent for payloads that cannot fail to marshal (strings,
// plain structs).
func MustEvent(topic Topic, data interface{}) Event {
	ev, err := NewEvent(topic, data)
	if err != nil {
		panic(err)
	}
	return ev
}

// Decode unmarshals the payload into T. A missing or null payload is
// invalid. Failures wrap ErrInvalidPayload.
func Decode[T any](ev Event) (T, error) {
	var v T
	if p := bytes.TrimSpace(ev.Payload); len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return v, fmt.Errorf("%w: %s: empty payload", ErrInvalidPayload, ev.Topic)
	}
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, ev.Topic, err)
	}
	return v, nil
}

// DecodeString decodes a payload that must be a JSON string.
func DecodeString(ev Event) (string, error) {
	return Decode[string](ev)
}

// String returns a short description used in logs.
func (e Event) String() string {
	return string(e.Topic) + " " + runewidth.Truncate(string(e.Payload), 80, "...")
}
