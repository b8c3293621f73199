package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes recorded by Instrumented.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Metrics holds the name service collectors. Register them with any
// prometheus.Registerer.
type Metrics struct {
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evmscript",
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Name service lookups by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evmscript",
			Subsystem: "resolver",
			Name:      "lookup_duration_seconds",
			Help:      "Name service lookup latency by operation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.lookups, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Lookups returns the counter for op and outcome.
func (m *Metrics) Lookups(op, outcome string) prometheus.Counter {
	return m.lookups.WithLabelValues(op, outcome)
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := OutcomeHit
	switch {
	case errors.Is(err, evmscript.ErrNameNotFound):
		outcome = OutcomeMiss
	case err != nil:
		outcome = OutcomeError
	}
	m.lookups.WithLabelValues(op, outcome).Inc()
}

// Instrumented records lookups of the wrapped resolver.
type Instrumented struct {
	next    evmscript.Resolver
	metrics *Metrics
}

var _ evmscript.Resolver = (*Instrumented)(nil)

// NewInstrumented wraps next.
func NewInstrumented(next evmscript.Resolver, metrics *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (i *Instrumented) ResolveName(ctx context.Context, name string) (common.Address, error) {
	start := time.Now()
	addr, err := i.next.ResolveName(ctx, name)
	i.metrics.observe("resolve", start, err)
	return addr, err
}

func (i *Instrumented) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	start := time.Now()
	name, err := i.next.LookupAddress(ctx, addr)
	i.metrics.observe("lookup", start, err)
	return name, err
}
