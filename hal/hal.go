// Package hal provides the peripheral collaborators the engine's actions
// drive: digital output pins and PWM tone channels. The engine never touches
// hardware itself; actions call these interfaces.
//
// Board is a simulated implementation for host runs and tests. Claiming is
// validated at initialization and failures there are fatal by policy: a
// timing demo has no degraded mode worth running with a missing peripheral.
package hal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrInvalidPin is returned when claiming a negative pin number.
	ErrInvalidPin = errors.New("invalid pin number")
	// ErrPinClaimed is returned when a pin is already owned.
	ErrPinClaimed = errors.New("pin already claimed")
	// ErrInvalidFrequency is returned for a zero tone frequency.
	ErrInvalidFrequency = errors.New("invalid tone frequency")
)

// Pin is a binary output. Set is fire-and-forget: level changes cannot fail
// after a successful claim.
type Pin interface {
	Set(level bool)
	High()
	Low()
}

// Tone is a PWM tone channel. On/Off toggle the duty cycle between ~50% and
// zero; SetFrequency retunes the carrier.
type Tone interface {
	SetFrequency(hz uint32) error
	On()
	Off()
}

// Board hands out simulated pins and tone channels, tracking ownership so a
// double claim fails the way a real peripheral driver would.
type Board struct {
	log     *zap.SugaredLogger
	claimed map[int]string
}

// NewBoard creates an empty board. A nil logger disables actuation logging.
func NewBoard(log *zap.SugaredLogger) *Board {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Board{
		log:     log,
		claimed: make(map[int]string),
	}
}

func (b *Board) claim(n int, name string) error {
	if n < 0 {
		return fmt.Errorf("pin %d: %w", n, ErrInvalidPin)
	}
	if owner, taken := b.claimed[n]; taken {
		return fmt.Errorf("pin %d held by %q: %w", n, owner, ErrPinClaimed)
	}
	b.claimed[n] = name
	return nil
}

// ClaimPin configures pin n as a digital output named for logging.
func (b *Board) ClaimPin(n int, name string) (*SimPin, error) {
	if err := b.claim(n, name); err != nil {
		return nil, err
	}
	b.log.Debugw("pin claimed", "gpio", n, "name", name)
	return &SimPin{num: n, name: name, log: b.log}, nil
}

// ClaimTone configures pin n as a PWM tone channel at the given carrier
// frequency, initially silent.
func (b *Board) ClaimTone(n int, hz uint32, name string) (*SimTone, error) {
	if hz == 0 {
		return nil, fmt.Errorf("pin %d: %w", n, ErrInvalidFrequency)
	}
	if err := b.claim(n, name); err != nil {
		return nil, err
	}
	b.log.Debugw("tone channel claimed", "gpio", n, "name", name, "freq_hz", hz)
	return &SimTone{num: n, name: name, freq: hz, log: b.log}, nil
}

// SimPin is the simulated digital output.
type SimPin struct {
	num   int
	name  string
	level bool
	log   *zap.SugaredLogger
}

// Set drives the pin to the given level. Redundant writes are dropped so
// per-tick actions do not flood the log.
func (p *SimPin) Set(level bool) {
	if p.level == level {
		return
	}
	p.level = level
	p.log.Debugw("pin set", "gpio", p.num, "name", p.name, "level", level)
}

// High drives the pin high.
func (p *SimPin) High() { p.Set(true) }

// Low drives the pin low.
func (p *SimPin) Low() { p.Set(false) }

// Level reports the last written level.
func (p *SimPin) Level() bool { return p.level }

// SimTone is the simulated PWM tone channel.
type SimTone struct {
	num  int
	name string
	freq uint32
	on   bool
	log  *zap.SugaredLogger
}

// SetFrequency retunes the carrier. The channel keeps sounding if it is on.
func (t *SimTone) SetFrequency(hz uint32) error {
	if hz == 0 {
		return fmt.Errorf("pin %d: %w", t.num, ErrInvalidFrequency)
	}
	t.freq = hz
	t.log.Debugw("tone retuned", "gpio", t.num, "name", t.name, "freq_hz", hz)
	return nil
}

// On raises the duty cycle to ~50%, sounding the tone.
func (t *SimTone) On() {
	if t.on {
		return
	}
	t.on = true
	t.log.Debugw("tone on", "gpio", t.num, "name", t.name, "freq_hz", t.freq)
}

// Off drops the duty cycle to zero.
func (t *SimTone) Off() {
	if !t.on {
		return
	}
	t.on = false
	t.log.Debugw("tone off", "gpio", t.num, "name", t.name)
}

// Sounding reports whether the tone is currently on.
func (t *SimTone) Sounding() bool { return t.on }

// Frequency reports the current carrier frequency.
func (t *SimTone) Frequency() uint32 { return t.freq }
