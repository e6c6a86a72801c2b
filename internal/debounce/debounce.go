// Package debounce coalesces bursts of events into a single trailing-edge
// action per quiescence window.
package debounce

import (
	"time"
)

// DefaultDelay is the quiescence window used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Clock schedules callbacks. It exists so tests can drive time manually.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall-clock implementation backed by time.AfterFunc.
var SystemClock Clock = systemClock{}

// Handle identifies one scheduled fire. The zero Handle is never issued.
type Handle uint64

// Debouncer keeps at most one pending timer. Scheduling a new action always
// cancels the previous one.
//
// A Debouncer is not safe for concurrent use: Schedule, Cancel, Claim and
// Stop must be called from the same goroutine. Timer callbacks only invoke
// the scheduled action, which is expected to hand control back to that
// goroutine and call Claim before doing any work.
type Debouncer struct {
	delay   time.Duration
	clock   Clock
	last    Handle
	pending Handle
	timer   Timer
}

// New creates a Debouncer. A non-positive delay means DefaultDelay and a nil
// clock means SystemClock.
func New(delay time.Duration, clock Clock) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer{delay: delay, clock: clock}
}

// Delay returns the quiescence window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule cancels any outstanding timer and arranges for action to run
// with the new handle once the delay elapses.
func (d *Debouncer) Schedule(action func(Handle)) Handle {
	d.Stop()

	d.last++
	h := d.last
	d.pending = h
	d.timer = d.clock.AfterFunc(d.delay, func() { action(h) })
	return h
}

// Cancel stops h if it is still the pending timer.
func (d *Debouncer) Cancel(h Handle) {
	if h == 0 || h != d.pending {
		return
	}
	d.Stop()
}

// Claim reports whether h is the pending timer and, if so, consumes it. A
// timer that fired after being superseded or cancelled cannot be claimed.
func (d *Debouncer) Claim(h Handle) bool {
	if h == 0 || h != d.pending {
		return false
	}
	d.pending = 0
	d.timer = nil
	return true
}

// Pending reports whether a timer is outstanding.
func (d *Debouncer) Pending() bool {
	return d.pending != 0
}

// Stop cancels the outstanding timer, if any.
func (d *Debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = 0
}
