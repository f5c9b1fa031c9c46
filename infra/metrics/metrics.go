// Package metrics exposes Prometheus instruments for the rate engine.
package metrics

import (
	"time"

	"github.com/amirasaad/fxrate/pkg/exchange/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes recorded by the upstream fetcher.
const (
	OutcomeSuccess   = "success"
	OutcomeRetryable = "retryable"
	OutcomeFatal     = "fatal"
)

// Recorder receives engine events. The zero Nop recorder drops them.
type Recorder interface {
	ConversionServed(source core.Source, defaulted bool)
	UpstreamAttempt(outcome string, elapsed time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ConversionServed(core.Source, bool)     {}
func (Nop) UpstreamAttempt(string, time.Duration) {}

// Prometheus records engine events as Prometheus metrics.
type Prometheus struct {
	conversions     *prometheus.CounterVec
	defaulted       prometheus.Counter
	attempts        *prometheus.CounterVec
	attemptDuration prometheus.Histogram
}

// NewPrometheus registers the engine's instruments with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxrate_conversions_total",
			Help: "Conversions served, by provenance of the rate.",
		}, []string{"source"}),
		defaulted: f.NewCounter(prometheus.CounterOpts{
			Name: "fxrate_fallback_defaulted_total",
			Help: "Static fallback lookups that had no entry and used the neutral default rate.",
		}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fxrate_upstream_attempts_total",
			Help: "Upstream fetch attempts, by outcome.",
		}, []string{"outcome"}),
		attemptDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxrate_upstream_attempt_seconds",
			Help:    "Duration of individual upstream fetch attempts.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
	}
}

func (p *Prometheus) ConversionServed(source core.Source, defaulted bool) {
	p.conversions.WithLabelValues(string(source)).Inc()
	if defaulted {
		p.defaulted.Inc()
	}
}

func (p *Prometheus) UpstreamAttempt(outcome string, elapsed time.Duration) {
	p.attempts.WithLabelValues(outcome).Inc()
	p.attemptDuration.Observe(elapsed.Seconds())
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*Prometheus)(nil)
)
