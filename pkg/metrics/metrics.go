// Package metrics exposes Prometheus metrics for the components pipeline.
// A batch run normally just carries them internally, but on very large
// graphs an iteration can take minutes, so the registry can optionally be
// served over HTTP to watch convergence from outside.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for one run.
type Registry struct {
	registry *prometheus.Registry

	EdgesRead      prometheus.Counter
	EdgesSkipped   prometheus.Counter
	EdgesPruned    prometheus.Counter
	Iterations     prometheus.Counter
	MergesRecorded prometheus.Counter
	NodesRelabeled prometheus.Counter

	EdgesLive   prometheus.Gauge
	NodesTotal  prometheus.Gauge
	MappedBytes prometheus.Gauge
}

// NewRegistry creates a registry with all component metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.EdgesRead = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_edges_read_total",
		Help: "Edges read from the input stream",
	})
	r.EdgesSkipped = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_edges_skipped_total",
		Help: "Input lines skipped for out-of-range endpoint values",
	})
	r.EdgesPruned = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_edges_pruned_total",
		Help: "Redundant same-label edges removed during scanning",
	})
	r.Iterations = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_iterations_total",
		Help: "Label propagation iterations completed",
	})
	r.MergesRecorded = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_merges_recorded_total",
		Help: "Label merges recorded across all iterations",
	})
	r.NodesRelabeled = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "components_nodes_relabeled_total",
		Help: "Node label rewrites applied across all iterations",
	})

	r.EdgesLive = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "components_edges_live",
		Help: "Edges still under consideration",
	})
	r.NodesTotal = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "components_nodes_total",
		Help: "Distinct nodes observed in the input",
	})
	r.MappedBytes = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name: "components_edge_store_mapped_bytes",
		Help: "Size of the mapped edge store region",
	})

	return r
}

// Handler returns an HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in a background goroutine. Errors from the
// listener are reported through errFn; a batch run does not stop because
// its metrics endpoint failed.
func (r *Registry) Serve(addr string, errFn func(error)) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && errFn != nil {
			errFn(err)
		}
	}()
}
