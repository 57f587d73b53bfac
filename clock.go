package phasor

import "time"

// Millis is a monotonic millisecond count since an arbitrary epoch, typically
// process start. It wraps at 2^32 (about 49.7 days); elapsed time must always
// be computed with unsigned subtraction (now - start), never by comparing
// readings directly.
type Millis uint32

// Clock produces a non-decreasing millisecond reading. Now has no failure
// modes: it is a pure read of an underlying counter.
type Clock interface {
	Now() Millis
}

// SystemClock reads the Go runtime's monotonic clock, anchored at creation.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock creates a SystemClock whose epoch is the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// Now returns milliseconds since the clock was created. time.Since uses the
// monotonic reading carried by the epoch, so wall-clock adjustments do not
// move it backwards.
func (c *SystemClock) Now() Millis {
	return Millis(time.Since(c.epoch) / time.Millisecond)
}

// ManualClock is a Clock whose reading only moves when told to. It drives
// machines deterministically in tests and host-side simulations.
type ManualClock struct {
	now Millis
}

// NewManualClock creates a ManualClock at the given reading. Starting near
// the top of the Millis range exercises wraparound behavior.
func NewManualClock(start Millis) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() Millis { return c.now }

// Advance moves the clock forward by d milliseconds, wrapping exactly like
// the real counter does.
func (c *ManualClock) Advance(d Millis) { c.now += d }

// Set jumps the clock to an absolute reading.
func (c *ManualClock) Set(t Millis) { c.now = t }
