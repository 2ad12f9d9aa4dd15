// Package debounce provides a cancellable single-shot timer for bubbletea
// models. Scheduling again before the timer fires replaces the pending fire,
// so a burst of changes produces one fire, a quiet period after the last one.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID int64

func nextID() int { return int(atomic.AddInt64(&lastID, 1)) }

// FireMsg is delivered when a scheduled delay elapses. Pass it to Timer.Fired
// to learn whether it is still the current schedule.
type FireMsg struct {
	id  int
	tag int
}

// Timer is owned by exactly one model. It is not safe for concurrent use; all
// calls happen on the bubbletea update loop.
type Timer struct {
	id      int
	tag     int
	pending bool
}

// New returns an idle timer with a unique id.
func New() Timer {
	return Timer{id: nextID()}
}

// Schedule arms the timer, discarding any pending schedule, and returns the
// command that delivers the FireMsg after d.
func (t *Timer) Schedule(d time.Duration) tea.Cmd {
	t.tag++
	t.pending = true
	id, tag := t.id, t.tag
	return tea.Tick(d, func(time.Time) tea.Msg {
		return FireMsg{id: id, tag: tag}
	})
}

// Cancel discards the pending schedule, if any.
func (t *Timer) Cancel() {
	t.tag++
	t.pending = false
}

// Pending reports whether a schedule is armed and has not fired.
func (t *Timer) Pending() bool { return t.pending }

// Fired reports whether msg belongs to this timer's current schedule. A true
// result disarms the timer; stale or foreign messages return false.
func (t *Timer) Fired(msg FireMsg) bool {
	if msg.id != t.id || msg.tag != t.tag || !t.pending {
		return false
	}
	t.pending = false
	return true
}
