// Command morse transmits SOS continuously on an LED and a 1kHz buzzer using
// standard ITU timing: dot = 1 unit, dash = 3, symbol gap = 1, letter gap = 3,
// word gap = 7, with a 200ms unit. The pattern is compiled into a phase cycle
// once at startup.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/phasor-fsm/phasor"
	"github.com/phasor-fsm/phasor/hal"
	"github.com/phasor-fsm/phasor/logger"
)

type envConfig struct {
	LedPin       int           `env:"LED_PIN" envDefault:"2"`
	BuzzerPin    int           `env:"BUZZER_PIN" envDefault:"5"`
	ToneHz       uint32        `env:"TONE_HZ" envDefault:"1000"`
	UnitMS       uint32        `env:"UNIT_MS" envDefault:"200"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"10ms"`
}

type symbol int

const (
	dot symbol = iota
	dash
	symbolGap
	letterGap
	wordGap
)

// sosPattern spells S O S with explicit gaps. The trailing word gap separates
// repeats of the whole transmission.
var sosPattern = []symbol{
	dot, symbolGap, dot, symbolGap, dot,
	letterGap,
	dash, symbolGap, dash, symbolGap, dash,
	letterGap,
	dot, symbolGap, dot, symbolGap, dot,
	wordGap,
}

// units maps a symbol to its ITU duration in time units and whether the
// signal is keyed during it.
func units(s symbol) (n uint32, keyed bool) {
	switch s {
	case dot:
		return 1, true
	case dash:
		return 3, true
	case symbolGap:
		return 1, false
	case letterGap:
		return 3, false
	default:
		return 7, false
	}
}

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("morse")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	board := hal.NewBoard(logger.For("hal"))
	led, err := board.ClaimPin(cfg.LedPin, "led")
	if err != nil {
		log.Fatalw("claiming LED", "err", err)
	}
	buzzer, err := board.ClaimTone(cfg.BuzzerPin, cfg.ToneHz, "buzzer")
	if err != nil {
		log.Fatalw("claiming buzzer", "err", err)
	}

	key := func(on bool) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			led.Set(on)
			if on {
				buzzer.On()
			} else {
				buzzer.Off()
			}
			return nil
		}
	}

	var written strings.Builder
	phases := make([]phasor.Phase, 0, len(sosPattern))
	for _, s := range sosPattern {
		n, keyed := units(s)
		name := "gap"
		switch s {
		case dot:
			name = "dot"
			written.WriteString(".")
		case dash:
			name = "dash"
			written.WriteString("-")
		case letterGap:
			written.WriteString(" ")
		}
		phases = append(phases, phasor.Phase{
			ID:       phasor.PhaseID(len(phases)),
			Name:     name,
			Duration: phasor.Millis(n * cfg.UnitMS),
			Entry:    key(keyed),
		})
	}
	pattern := written.String()

	// Announce each completed transmission from the word-gap entry.
	last := &phases[len(phases)-1]
	keyOff := last.Entry
	last.Entry = func(ctx context.Context, from, to phasor.PhaseID) error {
		log.Infow("transmitted", "pattern", pattern)
		return keyOff(ctx, from, to)
	}

	m, err := phasor.New("sos", phases, phasor.WithLogger(logger.For("machine")))
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	log.Infow("beacon started",
		"pattern", pattern, "unit_ms", cfg.UnitMS, "tone_hz", cfg.ToneHz)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
