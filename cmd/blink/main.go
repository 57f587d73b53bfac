// Command blink toggles a single LED on a one-second cadence. It is the
// smallest possible phasor program: two phases, one entry action each.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/phasor-fsm/phasor"
	"github.com/phasor-fsm/phasor/config"
	"github.com/phasor-fsm/phasor/hal"
	"github.com/phasor-fsm/phasor/logger"
)

type envConfig struct {
	LedPin       int           `env:"LED_PIN" envDefault:"2"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"50ms"`
}

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("blink")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	board := hal.NewBoard(logger.For("hal"))
	led, err := board.ClaimPin(cfg.LedPin, "led")
	if err != nil {
		log.Fatalw("claiming LED", "err", err)
	}

	prog := config.Blink()
	set := func(level bool) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			led.Set(level)
			return nil
		}
	}
	phases := []phasor.Phase{
		{ID: 0, Name: prog.Phases[0].Name, Duration: phasor.Millis(prog.Phases[0].DurationMS), Entry: set(true)},
		{ID: 1, Name: prog.Phases[1].Name, Duration: phasor.Millis(prog.Phases[1].DurationMS), Entry: set(false)},
	}

	m, err := phasor.New(prog.ID, phases, phasor.WithLogger(logger.For("machine")))
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
