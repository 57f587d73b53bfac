package phasor

import (
	"context"
	"time"
)

// Run drives m at a fixed cadence until ctx is cancelled. It starts the
// machine if needed, then polls once per interval. The engine itself never
// blocks; Run owns the sleeping so that callers who want to interleave other
// periodic work can keep calling Poll from their own loop instead.
//
// A clean cancellation returns nil. An action error stops the loop and is
// returned as-is.
func Run(ctx context.Context, m *Machine, interval time.Duration) error {
	if err := m.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Infow("control loop stopped", "machine", m.name, "polls", m.polls)
			return nil
		case <-ticker.C:
			start := time.Now()
			if err := m.Poll(ctx); err != nil {
				return err
			}
			// Overruns mean the cadence is too fast for the actions, or an
			// action is doing blocking work it should not.
			if took := time.Since(start); took > interval {
				m.log.Warnw("poll overran cadence",
					"machine", m.name, "interval", interval, "took", took)
			}
		}
	}
}
