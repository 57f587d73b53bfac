// Command trafficlight runs the blind-friendly traffic signal: a four-phase
// RED -> RED_TO_YELLOW -> GREEN -> GREEN_TO_YELLOW cycle with an audible
// crossing beep during green. Pins, cadence and program file come from the
// environment; the phase table can be overridden with a YAML program.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/phasor-fsm/phasor"
	"github.com/phasor-fsm/phasor/config"
	"github.com/phasor-fsm/phasor/hal"
	"github.com/phasor-fsm/phasor/internal/trace"
	"github.com/phasor-fsm/phasor/logger"
	"github.com/phasor-fsm/phasor/metrics"
)

type envConfig struct {
	RedPin       int           `env:"RED_PIN" envDefault:"2"`
	YellowPin    int           `env:"YELLOW_PIN" envDefault:"4"`
	GreenPin     int           `env:"GREEN_PIN" envDefault:"15"`
	BuzzerPin    int           `env:"BUZZER_PIN" envDefault:"5"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"10ms"`
	ProgramFile  string        `env:"PROGRAM_FILE"`
	MetricsAddr  string        `env:"METRICS_ADDR"`
}

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("trafficlight")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	prog := config.TrafficLight()
	if cfg.ProgramFile != "" {
		loaded, err := config.Load(cfg.ProgramFile)
		if err != nil {
			log.Fatalw("loading program", "file", cfg.ProgramFile, "err", err)
		}
		prog = loaded
	}
	if prog.Pulse == nil || len(prog.Phases) != 4 {
		log.Fatalw("program must have four phases and a pulse", "id", prog.ID)
	}
	if prog.TickMS != 0 {
		cfg.TickInterval = time.Duration(prog.TickMS) * time.Millisecond
	}

	board := hal.NewBoard(logger.For("hal"))
	red, err := board.ClaimPin(cfg.RedPin, "red")
	if err != nil {
		log.Fatalw("claiming red LED", "err", err)
	}
	yellow, err := board.ClaimPin(cfg.YellowPin, "yellow")
	if err != nil {
		log.Fatalw("claiming yellow LED", "err", err)
	}
	green, err := board.ClaimPin(cfg.GreenPin, "green")
	if err != nil {
		log.Fatalw("claiming green LED", "err", err)
	}
	buzzer, err := board.ClaimTone(cfg.BuzzerPin, prog.Pulse.FrequencyHz, "buzzer")
	if err != nil {
		log.Fatalw("claiming buzzer", "err", err)
	}

	// Exactly one lamp is lit per phase; turning everything off first keeps
	// entry actions order-independent.
	show := func(lit *hal.SimPin) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			red.Low()
			yellow.Low()
			green.Low()
			lit.High()
			return nil
		}
	}

	beep, err := phasor.NewPulse(
		phasor.Millis(prog.Pulse.IntervalMS), phasor.Millis(prog.Pulse.WidthMS),
		func(ctx context.Context) error {
			metrics.IncPulse(prog.ID, prog.Pulse.Phase)
			buzzer.On()
			return nil
		},
		func(ctx context.Context) error {
			buzzer.Off()
			return nil
		},
	)
	if err != nil {
		log.Fatalw("building beep pulse", "err", err)
	}

	lamps := []*hal.SimPin{red, yellow, green, yellow}
	phases := make([]phasor.Phase, len(prog.Phases))
	for i, spec := range prog.Phases {
		phases[i] = phasor.Phase{
			ID:       phasor.PhaseID(i),
			Name:     spec.Name,
			Duration: phasor.Millis(spec.DurationMS),
			Entry:    show(lamps[i]),
		}
		if spec.Name == prog.Pulse.Phase {
			phases[i].Tick = beep.Tick
			phases[i].Exit = func(ctx context.Context, from, to phasor.PhaseID) error {
				return beep.Reset(ctx)
			}
		}
	}

	events := make(chan phasor.TransitionEvent, 16)
	opts := []phasor.Option{
		phasor.WithLogger(logger.For("machine")),
		phasor.WithPublisher(trace.NewChannelPublisher(events)),
		phasor.WithRecorder(metrics.Recorder{}),
	}
	if idx := prog.PhaseIndex(prog.Initial); prog.Initial != "" && idx >= 0 {
		opts = append(opts, phasor.WithInitial(phasor.PhaseID(idx)))
	}

	m, err := phasor.New(prog.ID, phases, opts...)
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	go func() {
		for ev := range events {
			log.Infow("signal changed", "from", ev.FromName, "to", ev.ToName, "tick", ev.Poll)
		}
	}()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Infow("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Errorw("metrics server stopped", "err", err)
			}
		}()
	}

	log.Infow("traffic light started",
		"cycle_ms", prog.CycleMS(), "tick", cfg.TickInterval)
	log.Debugf("cycle layout:\n%s", trace.DOT(prog, prog.Initial))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
