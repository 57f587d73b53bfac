package phasor

import "context"

// PhaseID identifies a phase within its machine.
type PhaseID int

// Action runs when a phase is entered or exited. from and to are the phase
// IDs on either side of the transition; for the initial entry both are the
// starting phase.
type Action func(ctx context.Context, from, to PhaseID) error

// TickAction runs on every poll while its phase is current, before the
// transition check. elapsed is the time spent in the phase so far.
type TickAction func(ctx context.Context, elapsed Millis) error

// Phase describes one timed state in the cycle: how long it holds and what
// to do on entry, on every poll, and on exit. Phases are immutable once the
// machine is built; their slice order is the transition order.
type Phase struct {
	ID       PhaseID
	Name     string
	Duration Millis
	Entry    Action
	Tick     TickAction
	Exit     Action
}

func (p *Phase) enter(ctx context.Context, from, to PhaseID) error {
	if p.Entry != nil {
		return p.Entry(ctx, from, to)
	}
	return nil
}

func (p *Phase) exit(ctx context.Context, from, to PhaseID) error {
	if p.Exit != nil {
		return p.Exit(ctx, from, to)
	}
	return nil
}

func (p *Phase) tick(ctx context.Context, elapsed Millis) error {
	if p.Tick != nil {
		return p.Tick(ctx, elapsed)
	}
	return nil
}
