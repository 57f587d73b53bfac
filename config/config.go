// Package config defines declarative program descriptors for phasor
// machines: the phase table, its durations, and an optional pulse
// specification. Programs can be built fluently in code or loaded from YAML,
// so demo timings are tunable without recompiling.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Program is the complete description of one timed cycle.
type Program struct {
	ID      string      `json:"id" yaml:"id"`
	Initial string      `json:"initial,omitempty" yaml:"initial,omitempty"`
	TickMS  uint32      `json:"tick_ms,omitempty" yaml:"tick_ms,omitempty"`
	Phases  []PhaseSpec `json:"phases" yaml:"phases"`
	Pulse   *PulseSpec  `json:"pulse,omitempty" yaml:"pulse,omitempty"`
}

// PhaseSpec names one phase of the cycle and how long it holds. Order in the
// Phases slice is the transition order.
type PhaseSpec struct {
	Name       string `json:"name" yaml:"name"`
	DurationMS uint32 `json:"duration_ms" yaml:"duration_ms"`
}

// PulseSpec describes a bounded periodic effect attached to one phase.
type PulseSpec struct {
	Phase       string `json:"phase" yaml:"phase"`
	IntervalMS  uint32 `json:"interval_ms" yaml:"interval_ms"`
	WidthMS     uint32 `json:"width_ms" yaml:"width_ms"`
	FrequencyHz uint32 `json:"frequency_hz,omitempty" yaml:"frequency_hz,omitempty"`
}

// NewProgram creates an empty program with the given ID.
func NewProgram(id string) *Program {
	return &Program{ID: id}
}

// WithInitial sets the phase the machine starts in. Empty means the first
// phase of the table.
func (p *Program) WithInitial(name string) *Program {
	p.Initial = name
	return p
}

// WithTick sets the recommended poll cadence in milliseconds.
func (p *Program) WithTick(ms uint32) *Program {
	p.TickMS = ms
	return p
}

// AddPhase appends a phase to the cycle.
func (p *Program) AddPhase(name string, durationMS uint32) *Program {
	p.Phases = append(p.Phases, PhaseSpec{Name: name, DurationMS: durationMS})
	return p
}

// WithPulse attaches a pulse to the named phase.
func (p *Program) WithPulse(phase string, intervalMS, widthMS, frequencyHz uint32) *Program {
	p.Pulse = &PulseSpec{
		Phase:       phase,
		IntervalMS:  intervalMS,
		WidthMS:     widthMS,
		FrequencyHz: frequencyHz,
	}
	return p
}

// Validate checks the program for internal consistency:
// - non-empty ID and at least one phase
// - unique phase names
// - Initial (when set) names a phase
// - Pulse (when set) names a phase and its width does not exceed its interval
func (p *Program) Validate() error {
	if p.ID == "" {
		return errors.New("program ID is required")
	}
	if len(p.Phases) == 0 {
		return errors.New("at least one phase is required")
	}
	seen := make(map[string]struct{}, len(p.Phases))
	for i, ph := range p.Phases {
		if ph.Name == "" {
			return fmt.Errorf("phase %d has no name", i)
		}
		if _, dup := seen[ph.Name]; dup {
			return fmt.Errorf("duplicate phase name %q", ph.Name)
		}
		seen[ph.Name] = struct{}{}
	}
	if p.Initial != "" {
		if _, ok := seen[p.Initial]; !ok {
			return fmt.Errorf("initial phase %q not found", p.Initial)
		}
	}
	if p.Pulse != nil {
		if _, ok := seen[p.Pulse.Phase]; !ok {
			return fmt.Errorf("pulse phase %q not found", p.Pulse.Phase)
		}
		if p.Pulse.WidthMS > p.Pulse.IntervalMS {
			return fmt.Errorf("pulse width %dms exceeds interval %dms",
				p.Pulse.WidthMS, p.Pulse.IntervalMS)
		}
	}
	return nil
}

// PhaseIndex returns the position of the named phase, or -1.
func (p *Program) PhaseIndex(name string) int {
	for i, ph := range p.Phases {
		if ph.Name == name {
			return i
		}
	}
	return -1
}

// CycleMS returns the summed duration of one full pass through the cycle.
func (p *Program) CycleMS() uint32 {
	var total uint32
	for _, ph := range p.Phases {
		total += ph.DurationMS
	}
	return total
}

// Parse decodes a YAML program and validates it.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a YAML program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file: %w", err)
	}
	return Parse(data)
}
