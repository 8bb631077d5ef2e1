// Package render paints selection highlights and computes selection stats
// without freezing the host page: repaints are throttled, batched under a
// per-flush cell cap, and backed off when flushes blow the frame budget.
package render

import (
	"sync"
	"time"
)

// Clock returns the current time. Injected so throttling is testable and
// monotonic.
type Clock func() time.Time

// Scheduler schedules a callback after a delay. Implementations must run
// the callback on the engine's event goroutine; the polled TimerQueue is
// the default, and tests substitute a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// maxBackoffFactor bounds how far the adaptive backoff can stretch the
// throttle interval.
const maxBackoffFactor = 8

// Throttle rate-limits an operation: the first call in a burst executes
// immediately (leading edge), later calls within the window coalesce into
// one trailing call. When recent runs exceed the frame budget, the
// effective interval doubles, approximating a circuit breaker against
// sustained jank; it resets after a quiet period.
type Throttle struct {
	mu sync.Mutex

	interval time.Duration
	budget   time.Duration
	quiet    time.Duration

	clock Clock
	sched Scheduler
	fn    func()

	effective     time.Duration
	last          time.Time
	trailing      bool
	lastViolation time.Time
}

// NewThrottle creates a throttle around fn. A nil clock uses time.Now; a
// nil scheduler falls back to a TimerQueue the caller cannot drain, so
// callers wire their own (NewPipeline supplies one). A zero budget disables
// backoff; a zero quiet period resets backoff on the first non-violating
// run.
func NewThrottle(interval, budget, quiet time.Duration, clock Clock, sched Scheduler, fn func()) *Throttle {
	if clock == nil {
		clock = time.Now
	}
	if sched == nil {
		sched = NewTimerQueue(clock)
	}
	return &Throttle{
		interval:  interval,
		budget:    budget,
		quiet:     quiet,
		clock:     clock,
		sched:     sched,
		fn:        fn,
		effective: interval,
	}
}

// Call requests an execution. Returns true if the call ran on the leading
// edge, false if it was coalesced into a pending trailing call.
func (t *Throttle) Call() bool {
	t.mu.Lock()
	now := t.clock()
	if t.trailing {
		// A trailing call is already scheduled; this one coalesces into it.
		t.mu.Unlock()
		return false
	}
	wait := t.effective - now.Sub(t.last)
	if wait <= 0 || t.last.IsZero() {
		t.mu.Unlock()
		t.run()
		return true
	}
	t.trailing = true
	t.sched.AfterFunc(wait, func() {
		t.mu.Lock()
		t.trailing = false
		t.mu.Unlock()
		t.run()
	})
	t.mu.Unlock()
	return false
}

// Schedule requests a trailing execution without running on the leading
// edge. Used to defer carry-over work to a later tick. No-op when a
// trailing call is already pending.
func (t *Throttle) Schedule() {
	t.mu.Lock()
	if t.trailing {
		t.mu.Unlock()
		return
	}
	wait := t.effective - t.clock().Sub(t.last)
	if wait <= 0 {
		wait = t.effective
	}
	t.trailing = true
	t.sched.AfterFunc(wait, func() {
		t.mu.Lock()
		t.trailing = false
		t.mu.Unlock()
		t.run()
	})
	t.mu.Unlock()
}

// run executes fn, measuring its cost for the adaptive backoff.
func (t *Throttle) run() {
	start := t.clock()
	t.fn()
	end := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = end
	cost := end.Sub(start)
	if t.budget > 0 && cost > t.budget {
		t.effective *= 2
		if limit := t.interval * maxBackoffFactor; t.effective > limit {
			t.effective = limit
		}
		t.lastViolation = end
	} else if end.Sub(t.lastViolation) >= t.quiet {
		t.effective = t.interval
	}
}

// Effective returns the current effective interval, including any backoff.
func (t *Throttle) Effective() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effective
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trailing
}
