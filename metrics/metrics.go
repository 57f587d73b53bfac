// Package metrics exposes Prometheus collectors for engine activity:
// transition counts, pulse counts, and poll latency. The engine depends only
// on the phasor.Recorder interface; this package provides the Prometheus
// implementation and a handler for serving /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phasor-fsm/phasor"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phasor_transitions_total",
			Help: "Completed phase transitions, by machine and edge.",
		},
		[]string{"machine", "from", "to"},
	)

	pulsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phasor_pulses_total",
			Help: "Pulse firings, by machine and owning phase.",
		},
		[]string{"machine", "phase"},
	)

	pollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phasor_poll_duration_seconds",
			Help:    "Wall time of a single Poll call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"machine"},
	)
)

// Recorder implements phasor.Recorder on the package collectors.
type Recorder struct{}

var _ phasor.Recorder = Recorder{}

// ObserveTransition counts one completed transition.
func (Recorder) ObserveTransition(machine, from, to string) {
	transitionsTotal.WithLabelValues(machine, from, to).Inc()
}

// ObservePoll records the wall time of one Poll call.
func (Recorder) ObservePoll(machine string, d time.Duration) {
	pollDuration.WithLabelValues(machine).Observe(d.Seconds())
}

// IncPulse counts one pulse firing. Pulses are counted by the action that
// starts them, not by the engine, which has no pulse awareness.
func IncPulse(machine, phase string) {
	pulsesTotal.WithLabelValues(machine, phase).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
