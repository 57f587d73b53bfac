package phasor

import (
	"fmt"

	"go.uber.org/zap"
)

// Option applies configuration to a Machine via the functional options
// pattern. Options that cannot apply return an error from New.
type Option func(*Machine) error

// WithClock replaces the default SystemClock.
func WithClock(c Clock) Option {
	return func(m *Machine) error {
		m.clock = c
		return nil
	}
}

// WithLogger sets the machine's logger. The default is a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Machine) error {
		if log != nil {
			m.log = log
		}
		return nil
	}
}

// WithPublisher wires a TransitionPublisher that receives every transition.
func WithPublisher(p TransitionPublisher) Option {
	return func(m *Machine) error {
		m.publisher = p
		return nil
	}
}

// WithRecorder wires a metrics Recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) error {
		m.recorder = r
		return nil
	}
}

// WithInitial selects the phase the machine starts in. The default is the
// first phase of the slice.
func WithInitial(id PhaseID) Option {
	return func(m *Machine) error {
		for i := range m.phases {
			if m.phases[i].ID == id {
				m.initial = i
				return nil
			}
		}
		return fmt.Errorf("initial phase %d: %w", id, ErrUnknownPhase)
	}
}
