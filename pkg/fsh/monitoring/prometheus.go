package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements FrameworkMetrics using Prometheus collectors.
//
// All metrics are prefixed with "fshook_" to avoid naming conflicts.
//
// Metrics exposed:
//   - fshook_hooks_installed_total: Counter of hook installations
//   - fshook_hooks_removed_total: Counter of hook removals
//   - fshook_dispatches_total: Counter of dispatches by operation
//   - fshook_dispatch_chain_length: Histogram of snapshot sizes by operation
//   - fshook_reclamations_total: Counter of hook reclamation events
//   - fshook_callback_execs_total: Counter of callback bus firings by kind
//
// Thread-safe: all Prometheus collectors are thread-safe by design.
//
// Example:
//
//	func main() {
//	    metrics := monitoring.NewPrometheusMetrics(prometheus.DefaultRegisterer)
//	    monitoring.SetGlobalMetrics(metrics)
//
//	    http.Handle("/metrics", promhttp.Handler())
//	    http.ListenAndServe(":2112", nil)
//	}
type PrometheusMetrics struct {
	hooksInstalled prometheus.Counter
	hooksRemoved   prometheus.Counter
	dispatches     *prometheus.CounterVec
	chainLength    *prometheus.HistogramVec
	reclamations   prometheus.Counter
	callbackExecs  *prometheus.CounterVec
	registry       prometheus.Registerer
}

// NewPrometheusMetrics creates a Prometheus metrics collector and registers
// all metrics on reg. Use prometheus.DefaultRegisterer for the global
// default registry or prometheus.NewRegistry() for an isolated one.
//
// Registration panics on duplicates; that is intentional fail-fast behavior
// at startup.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	hooksInstalled := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fshook_hooks_installed_total",
			Help: "Total number of hooks installed on any mount.",
		},
	)

	hooksRemoved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fshook_hooks_removed_total",
			Help: "Total number of hooks removed through the API.",
		},
	)

	dispatches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fshook_dispatches_total",
			Help: "Total number of dispatched operations, partitioned by operation.",
		},
		[]string{"op"},
	)

	// Chains are short in practice; the buckets cover the tail where a
	// mount accumulates many layered hooks.
	chainLength := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fshook_dispatch_chain_length",
			Help:    "Histogram of dispatch snapshot sizes, partitioned by operation.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"op"},
	)

	reclamations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fshook_reclamations_total",
			Help: "Total number of hook reclamation events.",
		},
	)

	callbackExecs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fshook_callback_execs_total",
			Help: "Total number of callback bus firings, partitioned by kind.",
		},
		[]string{"kind"},
	)

	reg.MustRegister(hooksInstalled)
	reg.MustRegister(hooksRemoved)
	reg.MustRegister(dispatches)
	reg.MustRegister(chainLength)
	reg.MustRegister(reclamations)
	reg.MustRegister(callbackExecs)

	return &PrometheusMetrics{
		hooksInstalled: hooksInstalled,
		hooksRemoved:   hooksRemoved,
		dispatches:     dispatches,
		chainLength:    chainLength,
		reclamations:   reclamations,
		callbackExecs:  callbackExecs,
		registry:       reg,
	}
}

// RecordHookInstalled increments the installation counter.
func (p *PrometheusMetrics) RecordHookInstalled() {
	p.hooksInstalled.Inc()
}

// RecordHookRemoved increments the removal counter.
func (p *PrometheusMetrics) RecordHookRemoved() {
	p.hooksRemoved.Inc()
}

// RecordDispatch increments the dispatch counter and observes the snapshot
// size for the operation.
func (p *PrometheusMetrics) RecordDispatch(op string, hooksRun int) {
	p.dispatches.WithLabelValues(op).Inc()
	p.chainLength.WithLabelValues(op).Observe(float64(hooksRun))
}

// RecordReclamation increments the reclamation counter.
func (p *PrometheusMetrics) RecordReclamation() {
	p.reclamations.Inc()
}

// RecordCallbackExec increments the callback firing counter for the kind.
func (p *PrometheusMetrics) RecordCallbackExec(kind string) {
	p.callbackExecs.WithLabelValues(kind).Inc()
}
