// Package phasor implements a cooperative timed state machine for
// single-threaded polled control loops.
//
// A machine advances through a fixed cycle of phases. Each phase declares a
// duration and optional entry, per-poll tick, and exit actions. The caller
// owns the cadence: it invokes Poll once per loop iteration and the engine
// decides, from elapsed time alone, whether to stay in the current phase or
// advance to the next one. Poll never sleeps or blocks, so one loop can
// interleave several timed behaviors that a blocking-delay design would
// serialize.
//
// # Example
//
//	clock := phasor.NewSystemClock()
//	m, _ := phasor.New("blink", []phasor.Phase{
//		{ID: 0, Name: "on", Duration: 1000, Entry: ledOn},
//		{ID: 1, Name: "off", Duration: 1000, Entry: ledOff},
//	}, phasor.WithClock(clock))
//	phasor.Run(ctx, m, 10*time.Millisecond)
//
// # Timing model
//
// Time is a uint32 millisecond counter (Millis) that wraps at 2^32. All
// elapsed-time comparisons use unsigned subtraction, which stays correct
// across a wrap as long as phase durations are far below the counter range.
// Transitions happen on the first poll at or after a phase's duration, so
// with poll interval p a phase of duration d is held for a time in [d, d+p).
//
// # Ordering guarantees
//
//   - The current phase's tick action runs on every poll, before the
//     transition check.
//   - Entry and exit actions run exactly once per phase visit; exit of the
//     old phase and entry of the new one happen within a single Poll call.
//   - At most one transition occurs per poll, even when the caller's cadence
//     stalled long enough for several durations to elapse.
//
// Periodic effects inside a phase (a beep every second while green, say) are
// modeled with Pulse, whose Tick method satisfies the phase TickAction
// signature directly.
package phasor
