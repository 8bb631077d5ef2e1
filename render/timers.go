package render

import (
	"sync"
	"time"
)

// TimerQueue is a polled Scheduler: AfterFunc records the callback with a
// due time, and Process runs due callbacks on the calling goroutine. The
// engine has no internal locking, so deferred paint work must execute on
// the host's event goroutine — hosts drain the queue from their event loop
// rather than letting a timer goroutine fire into the engine.
type TimerQueue struct {
	mu      sync.Mutex
	clock   Clock
	entries []timerEntry
}

type timerEntry struct {
	due time.Time
	fn  func()
}

// NewTimerQueue creates a timer queue. A nil clock uses time.Now.
func NewTimerQueue(clock Clock) *TimerQueue {
	if clock == nil {
		clock = time.Now
	}
	return &TimerQueue{clock: clock}
}

// AfterFunc implements Scheduler. The callback runs no earlier than d from
// now, and only from a Process call.
func (q *TimerQueue) AfterFunc(d time.Duration, fn func()) {
	q.mu.Lock()
	q.entries = append(q.entries, timerEntry{due: q.clock().Add(d), fn: fn})
	q.mu.Unlock()
}

// Process runs every due callback on the calling goroutine and returns how
// many ran. Callbacks scheduled during processing wait for the next call.
func (q *TimerQueue) Process() int {
	now := q.clock()
	q.mu.Lock()
	var due, rest []timerEntry
	for _, e := range q.entries {
		if !e.due.After(now) {
			due = append(due, e)
		} else {
			rest = append(rest, e)
		}
	}
	q.entries = rest
	q.mu.Unlock()

	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// Pending reports whether any callback is waiting, due or not.
func (q *TimerQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) > 0
}
