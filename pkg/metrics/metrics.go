package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes recorded by SearchMetrics.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDiscarded = "discarded"
)

// Metrics bundles the collectors the storefront exports. Every method is
// safe to call on a nil receiver so components can run without metrics.
type Metrics struct {
	Search   *SearchMetrics
	Cart     *CartMetrics
	Sessions *SessionMetrics
}

// New registers all storefront collectors on reg. A nil registerer yields
// no-op metrics.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Search:   NewSearchMetrics(reg),
		Cart:     NewCartMetrics(reg),
		Sessions: NewSessionMetrics(reg),
	}
}

// SearchMetrics tracks the debounced customer search.
type SearchMetrics struct {
	inputs     prometheus.Counter
	deduped    prometheus.Counter
	dispatched prometheus.Counter
	lookups    *prometheus.CounterVec
	duration   prometheus.Histogram
}

func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	inputs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_inputs_total",
		Help: "Raw search input events received.",
	})
	deduped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_deduped_total",
		Help: "Debounced terms dropped because they matched the previous processed term.",
	})
	dispatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_lookups_dispatched_total",
		Help: "Customer lookups started by the search pipeline.",
	})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_lookups_total",
		Help: "Finished customer lookups by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_lookup_duration_seconds",
		Help:    "Duration of customer lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(inputs, deduped, dispatched, lookups, duration)
	return &SearchMetrics{
		inputs:     inputs,
		deduped:    deduped,
		dispatched: dispatched,
		lookups:    lookups,
		duration:   duration,
	}
}

func (m *SearchMetrics) IncInput() {
	if m == nil || m.inputs == nil {
		return
	}
	m.inputs.Inc()
}

func (m *SearchMetrics) IncDeduped() {
	if m == nil || m.deduped == nil {
		return
	}
	m.deduped.Inc()
}

func (m *SearchMetrics) IncDispatched() {
	if m == nil || m.dispatched == nil {
		return
	}
	m.dispatched.Inc()
}

// ObserveLookup records how a lookup finished and how long it took.
func (m *SearchMetrics) ObserveLookup(outcome string, duration time.Duration) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.Observe(duration.Seconds())
}

// CartMetrics counts cart mutations by operation.
type CartMetrics struct {
	mutations *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Applied cart mutations by operation.",
	}, []string{"op"})
	reg.MustRegister(mutations)
	return &CartMetrics{mutations: mutations}
}

func (m *CartMetrics) IncMutation(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// SessionMetrics tracks storefront session lifecycle.
type SessionMetrics struct {
	active  prometheus.Gauge
	created prometheus.Counter
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Sessions currently held in memory.",
	})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_created_total",
		Help: "Sessions created since start.",
	})
	reg.MustRegister(active, created)
	return &SessionMetrics{active: active, created: created}
}

func (m *SessionMetrics) Started() {
	if m == nil || m.active == nil {
		return
	}
	m.created.Inc()
	m.active.Inc()
}

func (m *SessionMetrics) Ended() {
	if m == nil || m.active == nil {
		return
	}
	m.active.Dec()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
