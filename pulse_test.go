package phasor

import (
	"context"
	"errors"
	"testing"
)

type pulseProbe struct {
	starts, stops int
}

func (p *pulseProbe) start(ctx context.Context) error {
	p.starts++
	return nil
}

func (p *pulseProbe) stop(ctx context.Context) error {
	p.stops++
	return nil
}

func TestNewPulseRejectsWideWidth(t *testing.T) {
	if _, err := NewPulse(100, 200, nil, nil); !errors.Is(err, ErrPulseWidth) {
		t.Errorf("expected ErrPulseWidth, got %v", err)
	}
}

// A freshly created (or reset) pulse fires on the first tick, not one
// interval later.
func TestPulseFiresImmediately(t *testing.T) {
	var probe pulseProbe
	p, err := NewPulse(1000, 200, probe.start, probe.stop)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := p.Tick(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if probe.starts != 1 {
		t.Errorf("expected immediate fire, starts=%d", probe.starts)
	}
	if !p.Active() {
		t.Error("expected pulse active after fire")
	}
}

func TestPulseCadenceAndWidth(t *testing.T) {
	var probe pulseProbe
	p, err := NewPulse(1000, 200, probe.start, probe.stop)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// 10ms tick cadence over 2.5s: fires at 0, 1000, 2000; each stops 200ms
	// after its start.
	for elapsed := Millis(0); elapsed <= 2500; elapsed += 10 {
		if err := p.Tick(ctx, elapsed); err != nil {
			t.Fatal(err)
		}
		switch elapsed {
		case 100, 1100, 2100:
			if !p.Active() {
				t.Errorf("expected pulse on at %d", elapsed)
			}
		case 500, 1500, 2500:
			if p.Active() {
				t.Errorf("expected pulse off at %d", elapsed)
			}
		}
	}
	if probe.starts != 3 {
		t.Errorf("expected 3 pulses, got %d", probe.starts)
	}
	if probe.stops != 3 {
		t.Errorf("expected 3 stops, got %d", probe.stops)
	}
}

func TestPulseResetStopsActivePulse(t *testing.T) {
	var probe pulseProbe
	p, err := NewPulse(1000, 200, probe.start, probe.stop)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := p.Tick(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Active() {
		t.Error("expected pulse inactive after reset")
	}
	if probe.stops != 1 {
		t.Errorf("expected stop invoked by reset, stops=%d", probe.stops)
	}

	// After reset the pulse behaves as never-fired: immediate fire again.
	if err := p.Tick(ctx, 5000); err != nil {
		t.Fatal(err)
	}
	if probe.starts != 2 {
		t.Errorf("expected immediate re-fire after reset, starts=%d", probe.starts)
	}
}

func TestPulseResetWhenIdleDoesNotStop(t *testing.T) {
	var probe pulseProbe
	p, err := NewPulse(1000, 200, probe.start, probe.stop)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if probe.stops != 0 {
		t.Errorf("reset of idle pulse must not invoke stop, stops=%d", probe.stops)
	}
}

func TestPulseStartErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewPulse(1000, 200, func(ctx context.Context) error { return boom }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Tick(context.Background(), 0); !errors.Is(err, boom) {
		t.Errorf("expected start error surfaced, got %v", err)
	}
}
