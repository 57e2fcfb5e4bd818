package accel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the layer's prometheus collectors. All observation happens
// off the validation hot path: path creation and benchmark runs only.
type Metrics struct {
	pathsCreated *prometheus.CounterVec
	benchLatency *prometheus.HistogramVec
	degradations prometheus.Counter
}

// NewMetrics registers the layer's collectors against reg and returns the
// handle the engine records through. Passing prometheus.DefaultRegisterer
// gives the usual process-global behavior.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pathsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accel_paths_created_total",
			Help: "Execution paths created, by operation and backend",
		}, []string{"operation", "backend"}),
		benchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accel_benchmark_latency_seconds",
			Help:    "Micro-benchmark latency per operation and backend",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"operation", "backend"}),
		degradations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accel_rung_degradations_total",
			Help: "Advertised acceleration rungs found unusable at construction time",
		}),
	}
	reg.MustRegister(m.pathsCreated, m.benchLatency, m.degradations)
	return m
}

func (m *Metrics) observePathCreated(p ExecutionPath) {
	if m == nil {
		return
	}
	m.pathsCreated.WithLabelValues(p.Operation().String(), p.Name()).Inc()
}

func (m *Metrics) observeDegradations(rungs []string) {
	if m == nil || len(rungs) == 0 {
		return
	}
	m.degradations.Add(float64(len(rungs)))
}

func (m *Metrics) observeBenchmark(p ExecutionPath, seconds float64) {
	if m == nil {
		return
	}
	m.benchLatency.WithLabelValues(p.Operation().String(), p.Name()).Observe(seconds)
}
