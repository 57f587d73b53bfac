// Package trace provides observational integrations for machines: transition
// fan-out to a channel and Graphviz export of a program's cycle. Everything
// here is read-only with respect to the engine.
package trace

import (
	"context"

	"github.com/phasor-fsm/phasor"
)

// ChannelPublisher forwards transition events to a Go channel. Publishing is
// non-blocking: when the channel is full the event is dropped, never stalling
// the control loop.
type ChannelPublisher struct {
	ch chan<- phasor.TransitionEvent
}

// NewChannelPublisher creates a ChannelPublisher with the given output
// channel.
func NewChannelPublisher(ch chan<- phasor.TransitionEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish sends the event, dropping it on backpressure.
func (p *ChannelPublisher) Publish(ctx context.Context, ev phasor.TransitionEvent) error {
	select {
	case p.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close closes the output channel.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
