package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultLogCapacity is the number of lines kept when no capacity is configured.
const DefaultLogCapacity = 5000

// ErrInvalidFilter is returned for a log filter outside the known set.
var ErrInvalidFilter = errors.New("invalid log filter")

// LogFilter selects which buffered lines are visible.
type LogFilter string

const (
	FilterAll   LogFilter = "all"
	FilterInfo  LogFilter = "info"
	FilterWarn  LogFilter = "warn"
	FilterError LogFilter = "error"
)

// LogFilters returns the filters in cycling order.
func LogFilters() []LogFilter {
	return []LogFilter{FilterAll, FilterInfo, FilterWarn, FilterError}
}

// ParseLogFilter validates a filter name.
func ParseLogFilter(s string) (LogFilter, error) {
	f := LogFilter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return f, nil
}

// Valid reports whether f is a known filter.
func (f LogFilter) Valid() bool {
	switch f {
	case FilterAll, FilterInfo, FilterWarn, FilterError:
		return true
	}
	return false
}

// Next returns the filter that follows f in cycling order.
func (f LogFilter) Next() LogFilter {
	all := LogFilters()
	for i, v := range all {
		if v == f {
			return all[(i+1)%len(all)]
		}
	}
	return FilterAll
}

// MatchesFilter reports whether line is visible under f. Matching is a
// case-insensitive substring test: info shows everything, warn shows warnings
// and errors, error shows errors only.
func MatchesFilter(f LogFilter, line string) bool {
	switch f {
	case FilterWarn:
		lower := strings.ToLower(line)
		return strings.Contains(lower, "warn") || strings.Contains(lower, "error")
	case FilterError:
		return strings.Contains(strings.ToLower(line), "error")
	default:
		return true
	}
}

// Logs is a bounded buffer of backend log lines plus the active filter.
// Once full, each append overwrites the oldest line.
type Logs struct {
	emitMu sync.Mutex
	mu     sync.RWMutex

	buf   []string
	head  int
	count int

	filter LogFilter

	// visible mirrors the filtered subsequence of buf while valid.
	visible      []string
	visibleValid bool

	linesObs   observers[[]string]
	filterObs  observers[LogFilter]
	visibleObs observers[[]string]
	changed    signal
}

// NewLogs returns an empty buffer. A non-positive capacity falls back to
// DefaultLogCapacity and an invalid filter to FilterAll.
func NewLogs(capacity int, filter LogFilter) *Logs {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if !filter.Valid() {
		filter = FilterAll
	}
	return &Logs{
		buf:          make([]string, capacity),
		filter:       filter,
		visibleValid: true,
	}
}

// Capacity returns the maximum number of buffered lines.
func (l *Logs) Capacity() int {
	return len(l.buf)
}

// Len returns the number of buffered lines.
func (l *Logs) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Lines returns the buffered lines, oldest first.
func (l *Logs) Lines() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lines()
}

func (l *Logs) lines() []string {
	out := make([]string, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

// Filter returns the active filter.
func (l *Logs) Filter() LogFilter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// Visible returns the lines that pass the active filter, oldest first.
func (l *Logs) Visible() []string {
	l.mu.RLock()
	if l.visibleValid {
		out := make([]string, len(l.visible))
		copy(out, l.visible)
		l.mu.RUnlock()
		return out
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rebuildVisible()
	out := make([]string, len(l.visible))
	copy(out, l.visible)
	return out
}

func (l *Logs) rebuildVisible() {
	if l.visibleValid {
		return
	}
	l.visible = l.visible[:0]
	for i := 0; i < l.count; i++ {
		line := l.buf[(l.head+i)%len(l.buf)]
		if MatchesFilter(l.filter, line) {
			l.visible = append(l.visible, line)
		}
	}
	l.visibleValid = true
}

// SubscribeLines calls fn with the buffered lines and again after every change.
func (l *Logs) SubscribeLines(fn func([]string)) *Subscription {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	sub := l.linesObs.add(fn)
	fn(l.Lines())
	return sub
}

// SubscribeFilter calls fn with the active filter and again on every change.
func (l *Logs) SubscribeFilter(fn func(LogFilter)) *Subscription {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	sub := l.filterObs.add(fn)
	fn(l.Filter())
	return sub
}

// SubscribeVisible calls fn with the filtered view and again whenever the
// buffer or the filter changes.
func (l *Logs) SubscribeVisible(fn func([]string)) *Subscription {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	sub := l.visibleObs.add(fn)
	fn(l.Visible())
	return sub
}

// SubscribeChanges calls fn after every change, without a value.
func (l *Logs) SubscribeChanges(fn func()) *Subscription {
	return onSignal(&l.changed, fn)
}

// Append adds a line, evicting the oldest one when the buffer is full.
func (l *Logs) Append(line string) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	capacity := len(l.buf)
	var evicted string
	full := l.count == capacity
	if full {
		evicted = l.buf[l.head]
		l.buf[l.head] = line
		l.head = (l.head + 1) % capacity
	} else {
		l.buf[(l.head+l.count)%capacity] = line
		l.count++
	}

	added := MatchesFilter(l.filter, line)
	dropped := full && MatchesFilter(l.filter, evicted)
	if l.visibleValid {
		// visible is an ordered subsequence of buf, so an evicted line that
		// passed the filter is always its first element.
		if dropped {
			l.visible[0] = ""
			l.visible = l.visible[1:]
		}
		if added {
			l.visible = append(l.visible, line)
		}
	}
	visibleChanged := added || dropped
	l.mu.Unlock()

	l.emit(true, false, visibleChanged)
}

// Clear empties the buffer. The filter is kept.
func (l *Logs) Clear() {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	wasEmpty := l.count == 0
	for i := range l.buf {
		l.buf[i] = ""
	}
	l.head, l.count = 0, 0
	l.visible = nil
	l.visibleValid = true
	l.mu.Unlock()

	if !wasEmpty {
		l.emit(true, false, true)
	}
}

// SetFilter changes the active filter. The buffer is not modified.
func (l *Logs) SetFilter(f LogFilter) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, f)
	}

	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	l.mu.Lock()
	if l.filter == f {
		l.mu.Unlock()
		return nil
	}
	l.filter = f
	l.visibleValid = false
	l.mu.Unlock()

	l.emit(false, true, true)
	return nil
}

// emit notifies observers. Snapshots are only built when someone listens.
func (l *Logs) emit(linesChanged, filterChanged, visibleChanged bool) {
	if linesChanged && l.linesObs.len() > 0 {
		l.linesObs.emit(l.Lines())
	}
	if filterChanged {
		l.filterObs.emit(l.Filter())
	}
	if visibleChanged && l.visibleObs.len() > 0 {
		l.visibleObs.emit(l.Visible())
	}
	notify(&l.changed)
}
