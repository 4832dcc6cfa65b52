// Package metrics exposes Prometheus instruments for the layout service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Simulation
	SimulationTicksTotal  prometheus.Counter
	SimulationTickSeconds prometheus.Histogram
	SimulationAlpha       prometheus.Gauge
	SimulationReheats     *prometheus.CounterVec

	// Graph
	GraphNodes          prometheus.Gauge
	GraphLinks          prometheus.Gauge
	GraphMutationsTotal *prometheus.CounterVec

	// History
	HistoryEntries prometheus.Gauge
	UndoTotal      *prometheus.CounterVec

	// Suggestions
	SuggestRequestsTotal *prometheus.CounterVec
	SuggestDuration      *prometheus.HistogramVec
	SuggestStaleTotal    prometheus.Counter

	// Streaming
	SSESubscribers *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every instrument registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.initHTTPMetrics()
	r.initLayoutMetrics()
	r.initSuggestMetrics()
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	r.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTick records one integration step and the energy after it.
func (r *Registry) RecordTick(alpha float64, duration time.Duration) {
	r.SimulationTicksTotal.Inc()
	r.SimulationTickSeconds.Observe(duration.Seconds())
	r.SimulationAlpha.Set(alpha)
}

// RecordReheat counts an energy restart by cause.
func (r *Registry) RecordReheat(cause string) {
	r.SimulationReheats.WithLabelValues(cause).Inc()
}

// RecordMutation counts a graph mutation and refreshes the size gauges.
func (r *Registry) RecordMutation(op string, nodes, links int) {
	r.GraphMutationsTotal.WithLabelValues(op).Inc()
	r.SetGraphSize(nodes, links)
}

// SetGraphSize sets the node and link gauges.
func (r *Registry) SetGraphSize(nodes, links int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphLinks.Set(float64(links))
}

// RecordUndo counts an undo attempt by result (ok, empty, irreversible).
func (r *Registry) RecordUndo(result string, remaining int) {
	r.UndoTotal.WithLabelValues(result).Inc()
	r.HistoryEntries.Set(float64(remaining))
}

// RecordSuggestion records a collaborator request by kind (ideas,
// definition) and result (ok, error, malformed, canceled).
func (r *Registry) RecordSuggestion(kind, result string, duration time.Duration) {
	r.SuggestRequestsTotal.WithLabelValues(kind, result).Inc()
	r.SuggestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSubscribers adjusts the live subscriber gauge of a stream topic.
func (r *Registry) RecordSubscribers(topic string, delta int) {
	r.SSESubscribers.WithLabelValues(topic).Add(float64(delta))
}
