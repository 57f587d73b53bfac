package phasor

import (
	"context"
	"errors"
)

// ErrPulseWidth is returned by NewPulse when the pulse width exceeds the
// firing interval; overlapping pulses have no sensible meaning.
var ErrPulseWidth = errors.New("pulse width exceeds interval")

// PulseFunc starts or stops the pulsed effect.
type PulseFunc func(ctx context.Context) error

// Pulse fires a bounded effect at a fixed cadence while its owning phase is
// current: the beep-every-second-during-green pattern. Its Tick method has
// the TickAction signature, so a Pulse wires directly into a Phase:
//
//	beep, _ := phasor.NewPulse(1000, 200, buzzerOn, buzzerOff)
//	green := phasor.Phase{Name: "green", Duration: 5000, Tick: beep.Tick,
//		Exit: func(ctx context.Context, _, _ phasor.PhaseID) error {
//			return beep.Reset(ctx)
//		}}
//
// Because it is driven off the phase's elapsed time, a freshly reset pulse
// fires on the first tick after entry.
type Pulse struct {
	interval Millis
	width    Millis
	start    PulseFunc
	stop     PulseFunc

	// fired distinguishes "never fired since reset" from a legitimate zero
	// timestamp; zero is not overloaded as a sentinel.
	fired    bool
	lastFire Millis
	active   bool
}

// NewPulse creates a pulse that fires every interval and holds for width
// milliseconds. width must not exceed interval.
func NewPulse(interval, width Millis, start, stop PulseFunc) (*Pulse, error) {
	if width > interval {
		return nil, ErrPulseWidth
	}
	return &Pulse{
		interval: interval,
		width:    width,
		start:    start,
		stop:     stop,
	}, nil
}

// Tick evaluates the pulse at the given elapsed time. It begins a new pulse
// when none is active and the interval has passed since the last one (or none
// has fired since the last reset), and ends the active pulse once its width
// has elapsed.
func (p *Pulse) Tick(ctx context.Context, elapsed Millis) error {
	if !p.active && (!p.fired || elapsed-p.lastFire >= p.interval) {
		if p.start != nil {
			if err := p.start(ctx); err != nil {
				return err
			}
		}
		p.active = true
		p.fired = true
		p.lastFire = elapsed
	}
	if p.active && elapsed-p.lastFire >= p.width {
		if p.stop != nil {
			if err := p.stop(ctx); err != nil {
				return err
			}
		}
		p.active = false
	}
	return nil
}

// Active reports whether the pulsed effect is currently on.
func (p *Pulse) Active() bool { return p.active }

// Reset stops an in-flight pulse and clears the cadence bookkeeping. Call it
// from the owning phase's exit action so a stale pulse cannot bleed into the
// phase's next visit.
func (p *Pulse) Reset(ctx context.Context) error {
	p.fired = false
	p.lastFire = 0
	if p.active {
		p.active = false
		if p.stop != nil {
			return p.stop(ctx)
		}
	}
	return nil
}
