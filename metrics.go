package eventqueue

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an opt-in set of Prometheus instruments a Queue can be wired
// to via WithMetrics. Unlike a package that registers counters against
// the default registry from an init() function, Metrics is constructed
// explicitly (NewMetrics) and registered explicitly by the caller
// (Metrics.MustRegister) — a library should never mutate global state
// just by being imported.
type Metrics struct {
	pushed          prometheus.Counter
	chunksCount     prometheus.Gauge
	chunksReclaimed prometheus.Counter
}

// NewMetrics constructs a fresh set of instruments, namespaced under
// "eventqueue". The same *Metrics may be shared across multiple Queue
// instances via WithMetrics; its counters then report combined totals,
// while the chunks gauge holds the count of whichever queue set it last.
func NewMetrics() *Metrics {
	return &Metrics{
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventqueue",
			Name:      "pushed_total",
			Help:      "Total number of values pushed into the queue.",
		}),
		chunksCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventqueue",
			Name:      "chunks",
			Help:      "Current number of chunks held by the queue.",
		}),
		chunksReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventqueue",
			Name:      "chunks_reclaimed_total",
			Help:      "Total number of chunks reclaimed by cleanup.",
		}),
	}
}

// MustRegister registers every instrument of m against reg. It panics on
// a registration conflict, matching prometheus.MustRegister's own
// semantics.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.pushed, m.chunksCount, m.chunksReclaimed)
}
