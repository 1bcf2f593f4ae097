package tui

import (
	"sync"

	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// storeChangedMsg names the containers that changed since the last refresh.
type storeChangedMsg struct {
	containers map[string]bool
}

// logEntryMsg carries an internal log entry for the status line.
type logEntryMsg logging.LogEntry

// profilesLoadedMsg is sent when a reload requested from the dashboard ends.
type profilesLoadedMsg struct {
	count int
	err   string
}

// changeBridge turns store notifications into tea messages.
//
// Store callbacks run while the notifying container is locked, so they must
// never block on the program. The bridge records the container name and pokes
// a one-slot channel; a burst of changes collapses into one message.
type changeBridge struct {
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	pending map[string]bool

	subs []*state.Subscription
	once sync.Once
}

func newChangeBridge(store *state.Store) *changeBridge {
	b := &changeBridge{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		pending: make(map[string]bool),
	}
	b.subs = store.SubscribeChanges(b.mark)
	return b
}

func (b *changeBridge) mark(container string) {
	b.mu.Lock()
	b.pending[container] = true
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *changeBridge) take() map[string]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.pending
	b.pending = make(map[string]bool)
	return p
}

// wait returns a command that blocks until the store changes.
func (b *changeBridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.wake:
			return storeChangedMsg{containers: b.take()}
		case <-b.done:
			return nil
		}
	}
}

func (b *changeBridge) close() {
	b.once.Do(func() {
		for _, s := range b.subs {
			s.Close()
		}
		close(b.done)
	})
}

// waitForLogEntry reads one internal log entry. A closed channel ends the loop.
func waitForLogEntry(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logEntryMsg(entry)
	}
}
