// Package sfg provides the core State Flow Graph: a dependency graph and
// optimizer for an asynchronous compute-task pipeline.
package sfg

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics collection for
// graph construction and optimization, namespaced "sfg_".
//
// Metrics exposed:
//
// 1. nodes (gauge): Current number of nodes in the master node list.
// Labels: graph_id.
//
// 2. pending_nodes (gauge): Current number of pending (unextracted) nodes.
// Labels: graph_id.
//
// 3. pass_duration_ms (histogram): Wall-clock duration of one optimization
// pass invocation. Labels: graph_id, pass (fuse/listgen/demote/deadstore).
//
// 4. pass_deletions_total (counter): Nodes deleted by an optimization
// pass. Labels: graph_id, pass.
//
// 5. listgen_dedup_total (counter): Redundant list-regeneration tasks
// dropped, either at insertion time (filter_listgen) or by
// optimize_listgen. Labels: graph_id, stage ("insert"/"optimize").
//
// 6. closure_duration_ms (histogram): Duration of
// compute_transitive_closure over a pending range. Labels: graph_id.
//
// Thread-safe: all methods use atomic Prometheus client operations or a
// mutex, matching the teacher's PrometheusMetrics in graph/metrics.go.
type PrometheusMetrics struct {
	nodes        *prometheus.GaugeVec
	pendingNodes *prometheus.GaugeVec

	passDuration  *prometheus.HistogramVec
	passDeletions *prometheus.CounterVec

	listgenDedup *prometheus.CounterVec

	closureDuration *prometheus.HistogramVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers every SFG metric with the
// provided Prometheus registry. Pass prometheus.DefaultRegisterer for the
// global registry, or a fresh prometheus.NewRegistry() for test isolation.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	pm := &PrometheusMetrics{enabled: true}

	pm.nodes = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sfg",
		Name:      "nodes",
		Help:      "Current number of nodes in the master node list",
	}, []string{"graph_id"})

	pm.pendingNodes = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sfg",
		Name:      "pending_nodes",
		Help:      "Current number of pending (unextracted) nodes",
	}, []string{"graph_id"})

	pm.passDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sfg",
		Name:      "pass_duration_ms",
		Help:      "Duration of one optimization pass invocation in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"graph_id", "pass"})

	pm.passDeletions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sfg",
		Name:      "pass_deletions_total",
		Help:      "Nodes deleted by an optimization pass",
	}, []string{"graph_id", "pass"})

	pm.listgenDedup = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sfg",
		Name:      "listgen_dedup_total",
		Help:      "Redundant list-regeneration tasks dropped",
	}, []string{"graph_id", "stage"})

	pm.closureDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sfg",
		Name:      "closure_duration_ms",
		Help:      "Duration of compute_transitive_closure over a pending range, in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"graph_id"})

	return pm
}

// UpdateNodes sets the current node-count gauge.
func (pm *PrometheusMetrics) UpdateNodes(graphID string, count int) {
	if !pm.enabled {
		return
	}
	pm.nodes.WithLabelValues(graphID).Set(float64(count))
}

// UpdatePendingNodes sets the current pending-node-count gauge.
func (pm *PrometheusMetrics) UpdatePendingNodes(graphID string, count int) {
	if !pm.enabled {
		return
	}
	pm.pendingNodes.WithLabelValues(graphID).Set(float64(count))
}

// RecordPassDuration records one optimization pass invocation's wall-clock
// duration in milliseconds.
func (pm *PrometheusMetrics) RecordPassDuration(graphID, pass string, ms float64) {
	if !pm.enabled {
		return
	}
	pm.passDuration.WithLabelValues(graphID, pass).Observe(ms)
}

// IncrementPassDeletions adds n to the deletion counter for pass.
func (pm *PrometheusMetrics) IncrementPassDeletions(graphID, pass string, n int) {
	if !pm.enabled || n == 0 {
		return
	}
	pm.passDeletions.WithLabelValues(graphID, pass).Add(float64(n))
}

// IncrementListgenDedup adds n to the listgen dedup counter for stage.
func (pm *PrometheusMetrics) IncrementListgenDedup(graphID, stage string, n int) {
	if !pm.enabled || n == 0 {
		return
	}
	pm.listgenDedup.WithLabelValues(graphID, stage).Add(float64(n))
}

// RecordClosureDuration records one compute_transitive_closure call's
// wall-clock duration in milliseconds.
func (pm *PrometheusMetrics) RecordClosureDuration(graphID string, ms float64) {
	if !pm.enabled {
		return
	}
	pm.closureDuration.WithLabelValues(graphID).Observe(ms)
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
