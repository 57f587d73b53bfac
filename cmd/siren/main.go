// Command siren alternates red and blue LEDs every 200ms while sweeping the
// buzzer between 600Hz and 1200Hz in 5Hz steps every 5ms. The LED alternation
// is the phase cycle; the sweep is a tick action with its own timebase, since
// it must glide smoothly across phase boundaries.
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
	RedPin       int           `env:"RED_PIN" envDefault:"18"`
	BluePin      int           `env:"BLUE_PIN" envDefault:"19"`
	BuzzerPin    int           `env:"BUZZER_PIN" envDefault:"21"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"5ms"`
}

const (
	flashMS = 200

	freqMin  = 600
	freqMax  = 1200
	freqStep = 5
	sweepMS  = 5
)

// sweep glides the buzzer frequency up and down. It keeps its own last-step
// timestamp against the machine clock instead of the phase-relative elapsed,
// so the glide does not restart on each LED swap.
type sweep struct {
	clock    phasor.Clock
	tone     *hal.SimTone
	lastStep phasor.Millis
	freq     uint32
	up       bool
}

func (s *sweep) Tick(ctx context.Context, _ phasor.Millis) error {
	now := s.clock.Now()
	if now-s.lastStep < sweepMS {
		return nil
	}
	s.lastStep = now

	if s.up {
		s.freq += freqStep
		if s.freq >= freqMax {
			s.up = false
		}
	} else {
		s.freq -= freqStep
		if s.freq <= freqMin {
			s.up = true
		}
	}
	return s.tone.SetFrequency(s.freq)
}

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("siren")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	board := hal.NewBoard(logger.For("hal"))
	red, err := board.ClaimPin(cfg.RedPin, "red")
	if err != nil {
		log.Fatalw("claiming red LED", "err", err)
	}
	blue, err := board.ClaimPin(cfg.BluePin, "blue")
	if err != nil {
		log.Fatalw("claiming blue LED", "err", err)
	}
	buzzer, err := board.ClaimTone(cfg.BuzzerPin, freqMin, "buzzer")
	if err != nil {
		log.Fatalw("claiming buzzer", "err", err)
	}
	buzzer.On()

	clock := phasor.NewSystemClock()
	sw := &sweep{clock: clock, tone: buzzer, freq: freqMin, up: true}

	flash := func(a, b *hal.SimPin) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			a.High()
			b.Low()
			return nil
		}
	}
	phases := []phasor.Phase{
		{ID: 0, Name: "red_flash", Duration: flashMS, Entry: flash(red, blue), Tick: sw.Tick},
		{ID: 1, Name: "blue_flash", Duration: flashMS, Entry: flash(blue, red), Tick: sw.Tick},
	}

	m, err := phasor.New("siren", phases,
		phasor.WithClock(clock),
		phasor.WithLogger(logger.For("machine")),
	)
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
