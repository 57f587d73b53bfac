package phasor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoPhases is returned by New when the phase list is empty.
	ErrNoPhases = errors.New("no phases provided")
	// ErrDuplicatePhase is returned by New when two phases share an ID.
	ErrDuplicatePhase = errors.New("duplicate phase ID")
	// ErrUnknownPhase is returned when an option references a phase ID that
	// is not part of the machine.
	ErrUnknownPhase = errors.New("unknown phase ID")
	// ErrNotStarted is returned by Poll before Start has run.
	ErrNotStarted = errors.New("machine not started")
)

// TransitionEvent describes one completed phase transition.
type TransitionEvent struct {
	Machine  string
	From     PhaseID
	FromName string
	To       PhaseID
	ToName   string
	At       Millis
	Poll     uint64
}

// TransitionPublisher receives transition events as they happen. Publish is
// called inline from Poll and must not block; implementations drop on
// backpressure.
type TransitionPublisher interface {
	Publish(ctx context.Context, ev TransitionEvent) error
}

// Recorder observes engine activity for metrics backends.
type Recorder interface {
	ObserveTransition(machine, from, to string)
	ObservePoll(machine string, d time.Duration)
}

// Machine advances through a fixed cycle of phases without blocking the
// caller. All context (current phase index, entry timestamp, poll count) is
// owned by the machine and mutated only by its own Start/Poll/Reset sequence;
// it is not safe for concurrent use and is not meant to be — there is exactly
// one writer, the polling loop.
type Machine struct {
	name   string
	phases []Phase
	clock  Clock
	log    *zap.SugaredLogger

	publisher TransitionPublisher
	recorder  Recorder

	initial   int
	current   int
	enteredAt Millis
	polls     uint64
	started   bool
}

// New builds a machine over the given phase cycle. The slice order is the
// transition order: next(i) = (i+1) mod len(phases).
func New(name string, phases []Phase, opts ...Option) (*Machine, error) {
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	seen := make(map[PhaseID]struct{}, len(phases))
	for _, p := range phases {
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("phase %q: %w", p.Name, ErrDuplicatePhase)
		}
		seen[p.ID] = struct{}{}
	}

	m := &Machine{
		name:   name,
		phases: phases,
		clock:  NewSystemClock(),
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.current = m.initial
	return m, nil
}

// Start records the entry timestamp of the initial phase and fires its entry
// action. Calling Start on a started machine is a no-op.
func (m *Machine) Start(ctx context.Context) error {
	if m.started {
		return nil
	}
	m.started = true
	return m.enterInitial(ctx)
}

// Reset re-initializes the machine to its initial phase: the entry timestamp
// is re-stamped and the initial phase's entry action fires again. The current
// phase's exit action does not run; Reset is re-initialization, not a
// transition.
func (m *Machine) Reset(ctx context.Context) error {
	if !m.started {
		return ErrNotStarted
	}
	return m.enterInitial(ctx)
}

func (m *Machine) enterInitial(ctx context.Context) error {
	m.current = m.initial
	m.enteredAt = m.clock.Now()
	first := &m.phases[m.current]
	m.log.Infow("entering initial phase", "machine", m.name, "phase", first.Name)
	if err := first.enter(ctx, first.ID, first.ID); err != nil {
		return fmt.Errorf("phase %q entry: %w", first.Name, err)
	}
	return nil
}

// Poll advances the machine by one cooperative step. It never sleeps: the
// caller is responsible for the cadence between calls. On each invocation the
// current phase's tick action runs first; then, if the phase's duration has
// elapsed, exit-of-old, advance, and entry-of-new happen within this same
// call. At most one transition occurs per poll, even when several durations
// have elapsed since the last call.
func (m *Machine) Poll(ctx context.Context) error {
	if !m.started {
		return ErrNotStarted
	}
	var pollStart time.Time
	if m.recorder != nil {
		pollStart = time.Now()
	}
	m.polls++

	// A current index outside the phase table is a programming error. Per
	// policy, never continue in an undefined phase: log and fall back to the
	// initial phase.
	if m.current < 0 || m.current >= len(m.phases) {
		m.log.Errorw("phase index out of range, resetting to initial",
			"machine", m.name, "index", m.current)
		return m.enterInitial(ctx)
	}

	cur := &m.phases[m.current]
	now := m.clock.Now()
	elapsed := now - m.enteredAt

	if err := cur.tick(ctx, elapsed); err != nil {
		return fmt.Errorf("phase %q tick: %w", cur.Name, err)
	}

	if elapsed < cur.Duration {
		m.observePoll(pollStart)
		return nil
	}

	next := (m.current + 1) % len(m.phases)
	nxt := &m.phases[next]

	if err := cur.exit(ctx, cur.ID, nxt.ID); err != nil {
		return fmt.Errorf("phase %q exit: %w", cur.Name, err)
	}
	m.current = next
	m.enteredAt = m.clock.Now()

	m.log.Infow("phase transition",
		"machine", m.name, "from", cur.Name, "to", nxt.Name, "held_ms", uint32(elapsed))
	if m.recorder != nil {
		m.recorder.ObserveTransition(m.name, cur.Name, nxt.Name)
	}
	if m.publisher != nil {
		ev := TransitionEvent{
			Machine:  m.name,
			From:     cur.ID,
			FromName: cur.Name,
			To:       nxt.ID,
			ToName:   nxt.Name,
			At:       m.enteredAt,
			Poll:     m.polls,
		}
		if err := m.publisher.Publish(ctx, ev); err != nil {
			m.log.Warnw("transition publish failed", "machine", m.name, "err", err)
		}
	}

	if err := nxt.enter(ctx, cur.ID, nxt.ID); err != nil {
		return fmt.Errorf("phase %q entry: %w", nxt.Name, err)
	}
	m.observePoll(pollStart)
	return nil
}

func (m *Machine) observePoll(start time.Time) {
	if m.recorder != nil {
		m.recorder.ObservePoll(m.name, time.Since(start))
	}
}

// Name returns the machine name used in logs, events and metrics labels.
func (m *Machine) Name() string { return m.name }

// Current returns the ID of the current phase.
func (m *Machine) Current() PhaseID { return m.phases[m.current].ID }

// CurrentName returns the name of the current phase.
func (m *Machine) CurrentName() string { return m.phases[m.current].Name }

// Elapsed returns the time spent in the current phase so far.
func (m *Machine) Elapsed() Millis { return m.clock.Now() - m.enteredAt }

// Polls returns the number of Poll calls since construction.
func (m *Machine) Polls() uint64 { return m.polls }

// Clock returns the machine's clock, for actions that keep their own
// cross-phase timing (a frequency sweep, say).
func (m *Machine) Clock() Clock { return m.clock }
