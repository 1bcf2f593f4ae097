package events

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(bus Bus) *[]Event {
	var got []Event
	bus.Subscribe(nil, func(ev Event) { got = append(got, ev) })
	return &got
}

func TestStreamReader_Run(t *testing.T) {
	bus := NewBus()
	got := collect(bus)

	input := strings.Join([]string{
		`{"event":"connection:state","data":"starting"}`,
		`{"event":"diag:step","data":{"id":"ping","status":"running","message":"probing"}}`,
		``,
		`2025/01/02 10:00:00 [INFO] socks5 listening on 127.0.0.1:1080`,
		`{"event":"tray:click","data":null}`,
		`{"event":"log:line","data":"[WARN] retransmit"}`,
	}, "\n")

	err := NewStreamReader(bus).Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, *got, 4)
	assert.Equal(t, TopicConnectionState, (*got)[0].Topic)
	assert.Equal(t, TopicDiagStep, (*got)[1].Topic)

	raw, err := DecodeString((*got)[2])
	require.NoError(t, err)
	assert.Equal(t, TopicLogLine, (*got)[2].Topic)
	assert.Equal(t, "2025/01/02 10:00:00 [INFO] socks5 listening on 127.0.0.1:1080", raw)

	line, err := DecodeString((*got)[3])
	require.NoError(t, err)
	assert.Equal(t, "[WARN] retransmit", line)

	assert.Equal(t, int64(1), bus.GetMetrics().EventsRejected, "unknown topic must be rejected")
}

func TestStreamReader_JSONWithoutEnvelopeIsRawLine(t *testing.T) {
	bus := NewBus()
	got := collect(bus)

	err := NewStreamReader(bus).Run(context.Background(), strings.NewReader(`{"level":"info","msg":"hi"}`+"\n"))
	require.NoError(t, err)

	require.Len(t, *got, 1)
	assert.Equal(t, TopicLogLine, (*got)[0].Topic)
}

func TestStreamReader_DropRawLines(t *testing.T) {
	bus := NewBus()
	got := collect(bus)

	sr := NewStreamReader(bus)
	sr.RawTopic = ""
	require.NoError(t, sr.Run(context.Background(), strings.NewReader("plain text\n")))
	assert.Empty(t, *got)
}

func TestStreamReader_CancelledContext(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStreamReader(bus).Run(ctx, strings.NewReader("line\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
