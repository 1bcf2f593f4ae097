package state

import (
	"fmt"
	"strings"
	"sync"
)

// ConnectionStatus is the lifecycle state of the tunnel backend.
type ConnectionStatus string

const (
	StatusIdle      ConnectionStatus = "idle"
	StatusStarting  ConnectionStatus = "starting"
	StatusConnected ConnectionStatus = "connected"
	StatusError     ConnectionStatus = "error"
)

// statusTesting is sent by older backends while a connectivity test runs.
const statusTesting = "testing"

// ParseConnectionStatus validates a status received from the backend.
// "testing" is accepted as an alias of starting.
func ParseConnectionStatus(s string) (ConnectionStatus, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case string(StatusIdle), string(StatusStarting), string(StatusConnected), string(StatusError):
		return ConnectionStatus(v), nil
	case statusTesting:
		return StatusStarting, nil
	default:
		return "", fmt.Errorf("unknown connection status %q", s)
	}
}

// Connection holds the backend connection status and the last reported error.
type Connection struct {
	emitMu sync.Mutex
	mu     sync.RWMutex

	status    ConnectionStatus
	lastError string

	clearOnRecovery bool

	statusObs observers[ConnectionStatus]
	errorObs  observers[string]
	changed   signal
}

// NewConnection returns a container in the idle state. When clearOnRecovery
// is set, a transition out of error clears LastError.
func NewConnection(clearOnRecovery bool) *Connection {
	return &Connection{status: StatusIdle, clearOnRecovery: clearOnRecovery}
}

// Status returns the current status.
func (c *Connection) Status() ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// LastError returns the last reported error message, or "".
func (c *Connection) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// SubscribeStatus calls fn with the current status and again on every change.
func (c *Connection) SubscribeStatus(fn func(ConnectionStatus)) *Subscription {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	sub := c.statusObs.add(fn)
	fn(c.Status())
	return sub
}

// SubscribeLastError calls fn with the current error and again on every change.
func (c *Connection) SubscribeLastError(fn func(string)) *Subscription {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	sub := c.errorObs.add(fn)
	fn(c.LastError())
	return sub
}

// SubscribeChanges calls fn after every change, without a value.
func (c *Connection) SubscribeChanges(fn func()) *Subscription {
	return onSignal(&c.changed, fn)
}

// OnConnectionEvent applies a status reported by the backend. Any status is
// reachable from any other.
func (c *Connection) OnConnectionEvent(status ConnectionStatus) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	prevStatus, prevErr := c.status, c.lastError
	c.status = status
	if c.clearOnRecovery && status != StatusError {
		c.lastError = ""
	}
	status, lastErr := c.status, c.lastError
	c.mu.Unlock()

	c.emit(prevStatus != status, prevErr != lastErr, status, lastErr)
}

// OnErrorEvent records the error message that accompanies a failure.
func (c *Connection) OnErrorEvent(message string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	prev := c.lastError
	c.lastError = message
	status := c.status
	c.mu.Unlock()

	c.emit(false, prev != message, status, message)
}

// Reset returns the container to idle with no error.
func (c *Connection) Reset() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	prevStatus, prevErr := c.status, c.lastError
	c.status, c.lastError = StatusIdle, ""
	c.mu.Unlock()

	c.emit(prevStatus != StatusIdle, prevErr != "", StatusIdle, "")
}

func (c *Connection) emit(statusChanged, errChanged bool, status ConnectionStatus, lastErr string) {
	if statusChanged {
		c.statusObs.emit(status)
	}
	if errChanged {
		c.errorObs.emit(lastErr)
	}
	if statusChanged || errChanged {
		notify(&c.changed)
	}
}
