// Command countdown runs the ticking time bomb: five LEDs go dark one per
// second with a tick beep, the last LED gets five accelerated ticks, then a
// low 100Hz rumble and rapid flashing mark the explosion before a three
// second pause and rearm.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/phasor-fsm/phasor"
	"github.com/phasor-fsm/phasor/hal"
	"github.com/phasor-fsm/phasor/logger"
)

type envConfig struct {
	LedPins      []int         `env:"LED_PINS" envDefault:"2,4,15,18,19"`
	BuzzerPin    int           `env:"BUZZER_PIN" envDefault:"5"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"10ms"`
}

const (
	armedMS    = 2000
	stepMS     = 1000
	criticalMS = 1000
	boomMS     = 2000
	rearmMS    = 3000

	tickHz = 1000
	boomHz = 100

	tickBeepMS  = 100
	rapidTickMS = 200
	flashMS     = 100
)

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("countdown")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	board := hal.NewBoard(logger.For("hal"))
	leds := make([]*hal.SimPin, len(cfg.LedPins))
	for i, pin := range cfg.LedPins {
		led, err := board.ClaimPin(pin, "led")
		if err != nil {
			log.Fatalw("claiming LED", "gpio", pin, "err", err)
		}
		leds[i] = led
	}
	buzzer, err := board.ClaimTone(cfg.BuzzerPin, tickHz, "buzzer")
	if err != nil {
		log.Fatalw("claiming buzzer", "err", err)
	}

	lit := func(count int) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			for i, led := range leds {
				led.Set(i < count)
			}
			if count > 0 && count < len(leds) {
				log.Infow("counting down", "leds_remaining", count)
			}
			return nil
		}
	}
	allLeds := func(level bool) {
		for _, led := range leds {
			led.Set(level)
		}
	}

	// One tick beep at the start of each countdown second.
	tick, err := phasor.NewPulse(stepMS, tickBeepMS,
		func(ctx context.Context) error {
			if err := buzzer.SetFrequency(tickHz); err != nil {
				return err
			}
			buzzer.On()
			return nil
		},
		func(ctx context.Context) error {
			buzzer.Off()
			return nil
		},
	)
	if err != nil {
		log.Fatalw("building tick pulse", "err", err)
	}
	// Rapid ticking while the last LED holds.
	rapid, err := phasor.NewPulse(rapidTickMS, tickBeepMS,
		func(ctx context.Context) error {
			buzzer.On()
			return nil
		},
		func(ctx context.Context) error {
			buzzer.Off()
			return nil
		},
	)
	if err != nil {
		log.Fatalw("building rapid pulse", "err", err)
	}
	flash, err := phasor.NewPulse(2*flashMS, flashMS,
		func(ctx context.Context) error {
			allLeds(true)
			return nil
		},
		func(ctx context.Context) error {
			allLeds(false)
			return nil
		},
	)
	if err != nil {
		log.Fatalw("building flash pulse", "err", err)
	}

	resetPulse := func(p *phasor.Pulse) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			return p.Reset(ctx)
		}
	}

	phases := []phasor.Phase{
		{ID: 0, Name: "armed", Duration: armedMS, Entry: func(ctx context.Context, from, to phasor.PhaseID) error {
			allLeds(true)
			log.Infow("timer armed", "leds", len(leds))
			return nil
		}},
	}
	// Counting phases extinguish one LED at a time, down to the last one.
	for remaining := len(leds); remaining >= 2; remaining-- {
		phases = append(phases, phasor.Phase{
			ID:       phasor.PhaseID(len(phases)),
			Name:     "count",
			Duration: stepMS,
			Entry:    lit(remaining),
			Tick:     tick.Tick,
			Exit:     resetPulse(tick),
		})
	}
	phases = append(phases,
		phasor.Phase{
			ID:       phasor.PhaseID(len(phases)),
			Name:     "critical",
			Duration: criticalMS,
			Entry: func(ctx context.Context, from, to phasor.PhaseID) error {
				log.Warnw("critical, accelerated ticking")
				return lit(1)(ctx, from, to)
			},
			Tick: rapid.Tick,
			Exit: resetPulse(rapid),
		},
		phasor.Phase{
			ID:       phasor.PhaseID(len(phases)) + 1,
			Name:     "explosion",
			Duration: boomMS,
			Entry: func(ctx context.Context, from, to phasor.PhaseID) error {
				log.Warnw("boom")
				if err := buzzer.SetFrequency(boomHz); err != nil {
					return err
				}
				buzzer.On()
				return nil
			},
			Tick: flash.Tick,
			Exit: func(ctx context.Context, from, to phasor.PhaseID) error {
				buzzer.Off()
				return flash.Reset(ctx)
			},
		},
		phasor.Phase{
			ID:       phasor.PhaseID(len(phases)) + 2,
			Name:     "rearm_wait",
			Duration: rearmMS,
			Entry: func(ctx context.Context, from, to phasor.PhaseID) error {
				allLeds(false)
				log.Infow("resetting")
				return nil
			},
		},
	)

	m, err := phasor.New("countdown", phases, phasor.WithLogger(logger.For("machine")))
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
