// Command melody plays the Imperial March on the buzzer without ever
// sleeping: each note becomes a pair of phases, 90% sounding and 10% gap, and
// the machine cycles through the whole score before a five-second rest. Three
// LEDs follow the register of the current note.
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
	BuzzerPin    int           `env:"BUZZER_PIN" envDefault:"5"`
	LowLedPin    int           `env:"LOW_LED_PIN" envDefault:"2"`
	MidLedPin    int           `env:"MID_LED_PIN" envDefault:"4"`
	HighLedPin   int           `env:"HIGH_LED_PIN" envDefault:"15"`
	Tempo        uint32        `env:"TEMPO" envDefault:"120"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"10ms"`
}

// Note frequencies in Hz.
const (
	noteF4  = 349
	noteGS4 = 415
	noteA4  = 440
	noteB4  = 494
	noteC5  = 523
	noteCS5 = 554
	noteD5  = 587
	noteDS5 = 622
	noteE5  = 659
	noteF5  = 698
	noteG5  = 784
	noteGS5 = 831
	noteA5  = 880
	rest    = 0
)

// note is one entry of the score: a frequency and a duration divider relative
// to a whole note. Negative dividers mark dotted notes (1.5x).
type note struct {
	freq    uint32
	divider int32
}

var imperialMarch = []note{
	// Main theme
	{noteA4, -4}, {noteA4, -4}, {noteA4, 16}, {noteA4, 16},
	{noteA4, 16}, {noteA4, 16}, {noteF4, 8}, {rest, 8},
	{noteA4, -4}, {noteA4, -4}, {noteA4, 16}, {noteA4, 16},
	{noteA4, 16}, {noteA4, 16}, {noteF4, 8}, {rest, 8},
	{noteA4, 4}, {noteA4, 4}, {noteA4, 4}, {noteF4, -8}, {noteC5, 16},

	{noteA4, 4}, {noteF4, -8}, {noteC5, 16}, {noteA4, 2},
	{noteE5, 4}, {noteE5, 4}, {noteE5, 4}, {noteF5, -8}, {noteC5, 16},
	{noteA4, 4}, {noteF4, -8}, {noteC5, 16}, {noteA4, 2},

	{noteA5, 4}, {noteA4, -8}, {noteA4, 16}, {noteA5, 4},
	{noteGS5, -8}, {noteG5, 16},
	{noteDS5, 16}, {noteD5, 16}, {noteDS5, 8}, {rest, 8},
	{noteA4, 8}, {noteDS5, 4}, {noteD5, -8}, {noteCS5, 16},

	{noteC5, 16}, {noteB4, 16}, {noteC5, 16}, {rest, 8},
	{noteF4, 8}, {noteGS4, 4}, {noteF4, -8}, {noteA4, -16},
	{noteC5, 4}, {noteA4, -8}, {noteC5, 16}, {noteE5, 2},

	{noteA5, 4}, {noteA4, -8}, {noteA4, 16}, {noteA5, 4},
	{noteGS5, -8}, {noteG5, 16},
	{noteDS5, 16}, {noteD5, 16}, {noteDS5, 8}, {rest, 8},
	{noteA4, 8}, {noteDS5, 4}, {noteD5, -8}, {noteCS5, 16},

	{noteC5, 16}, {noteB4, 16}, {noteC5, 16}, {rest, 8},
	{noteF4, 8}, {noteGS4, 4}, {noteF4, -8}, {noteA4, -16},
	{noteA4, 4}, {noteF4, -8}, {noteC5, 16}, {noteA4, 2},
}

// noteMS converts a duration divider to milliseconds at the given tempo.
func noteMS(tempo uint32, divider int32) uint32 {
	whole := 4 * 60000 / tempo
	if divider > 0 {
		return whole / uint32(divider)
	}
	return whole / uint32(-divider) * 3 / 2
}

func main() {
	logger.Initialize()
	defer func() { _ = logger.Sync() }()
	log := logger.For("melody")

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("parsing environment", "err", err)
	}

	board := hal.NewBoard(logger.For("hal"))
	buzzer, err := board.ClaimTone(cfg.BuzzerPin, noteA4, "buzzer")
	if err != nil {
		log.Fatalw("claiming buzzer", "err", err)
	}
	low, err := board.ClaimPin(cfg.LowLedPin, "low")
	if err != nil {
		log.Fatalw("claiming low LED", "err", err)
	}
	mid, err := board.ClaimPin(cfg.MidLedPin, "mid")
	if err != nil {
		log.Fatalw("claiming mid LED", "err", err)
	}
	high, err := board.ClaimPin(cfg.HighLedPin, "high")
	if err != nil {
		log.Fatalw("claiming high LED", "err", err)
	}

	silence := func(ctx context.Context, from, to phasor.PhaseID) error {
		buzzer.Off()
		low.Low()
		mid.Low()
		high.Low()
		return nil
	}
	sound := func(freq uint32) phasor.Action {
		return func(ctx context.Context, from, to phasor.PhaseID) error {
			if freq == rest {
				return silence(ctx, from, to)
			}
			if err := buzzer.SetFrequency(freq); err != nil {
				return err
			}
			buzzer.On()
			low.Set(freq < 400)
			mid.Set(freq >= 400 && freq < 650)
			high.Set(freq >= 650)
			return nil
		}
	}

	// Two phases per note; the gap keeps articulation between repeated
	// pitches.
	phases := make([]phasor.Phase, 0, 2*len(imperialMarch)+1)
	for _, n := range imperialMarch {
		d := noteMS(cfg.Tempo, n.divider)
		soundMS := d * 9 / 10
		id := phasor.PhaseID(len(phases))
		phases = append(phases,
			phasor.Phase{ID: id, Name: "note", Duration: phasor.Millis(soundMS), Entry: sound(n.freq)},
			phasor.Phase{ID: id + 1, Name: "gap", Duration: phasor.Millis(d - soundMS), Entry: silence},
		)
	}
	phases = append(phases, phasor.Phase{
		ID:       phasor.PhaseID(len(phases)),
		Name:     "encore_wait",
		Duration: 5000,
		Entry: func(ctx context.Context, from, to phasor.PhaseID) error {
			log.Infow("melody complete, restarting", "notes", len(imperialMarch))
			return silence(ctx, from, to)
		},
	})

	m, err := phasor.New("melody", phases, phasor.WithLogger(logger.For("machine")))
	if err != nil {
		log.Fatalw("building machine", "err", err)
	}

	log.Infow("playing", "notes", len(imperialMarch), "tempo", cfg.Tempo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := phasor.Run(ctx, m, cfg.TickInterval); err != nil {
		log.Fatalw("control loop failed", "err", err)
	}
}
