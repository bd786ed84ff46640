package observability

import (
	"context"
	"errors"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for transition outcomes and signals.
type Metrics struct {
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	signals     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered under the same names are reused, so several
// machines can share one registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_transitions_total",
				Help: "Total number of Apply calls by outcome",
			},
			[]string{"machine", "transition", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwise_transition_duration_seconds",
				Help:    "Duration of Apply calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"machine", "transition"},
		),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_signals_total",
				Help: "Total number of signals emitted",
			},
			[]string{"signal"},
		),
	}
	if reg != nil {
		m.transitions = register(reg, m.transitions)
		m.duration = register(reg, m.duration)
		m.signals = register(reg, m.signals)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Hooks returns lifecycle hooks that record every Apply outcome.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApplied:  m.observe,
		OnRejected: m.observe,
	}
}

func (m *Metrics) observe(_ context.Context, out *domain.Outcome) {
	m.transitions.WithLabelValues(out.Machine, out.Transition, domain.Reason(out.Err)).Inc()
	m.duration.WithLabelValues(out.Machine, out.Transition).Observe(out.Elapsed.Seconds())
}

// Publish counts a signal. It satisfies ports.Publisher.
func (m *Metrics) Publish(_ context.Context, signal string, _ any) {
	m.signals.WithLabelValues(signal).Inc()
}
