package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// maxLineSize bounds a single backend output line.
const maxLineSize = 1024 * 1024

// envelope is the newline-delimited JSON framing the backend writes on stdout:
//
//	{"event":"diag:step","data":{"id":"ping","status":"pass","message":"ok"}}
type envelope struct {
	Event *Topic          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// StreamReader turns a backend output stream into bus events.
type StreamReader struct {
	bus Bus
	// RawTopic receives lines that are not event envelopes. Empty drops them.
	RawTopic Topic
}

// NewStreamReader creates a reader publishing onto bus. Lines that are not
// envelopes are published as log lines.
func NewStreamReader(bus Bus) *StreamReader {
	return &StreamReader{bus: bus, RawTopic: TopicLogLine}
}

// ParseLine classifies one line of backend output. ok is false for blank lines.
func (sr *StreamReader) ParseLine(line []byte) (ev Event, ok bool, err error) {
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		return Event{}, false, nil
	}

	if line[0] == '{' {
		var env envelope
		if jsonErr := json.Unmarshal(line, &env); jsonErr == nil && env.Event != nil {
			ev = Event{Topic: *env.Event, Payload: env.Data, Timestamp: time.Now()}
			if !ev.Topic.IsKnown() {
				return ev, true, fmt.Errorf("%w: %q", ErrUnknownTopic, ev.Topic)
			}
			return ev, true, nil
		}
	}

	if sr.RawTopic == "" {
		return Event{}, false, nil
	}
	raw, _ := json.Marshal(string(line))
	return Event{Topic: sr.RawTopic, Payload: raw, Timestamp: time.Now()}, true, nil
}

// Run reads r until EOF or ctx is cancelled, publishing each event in order.
// Envelopes naming unknown topics are rejected on the bus.
func (sr *StreamReader) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, ok, err := sr.ParseLine(scanner.Bytes())
		if err != nil {
			sr.bus.Reject(ev, err)
			continue
		}
		if ok {
			sr.bus.Publish(ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read event stream: %w", err)
	}
	return nil
}
