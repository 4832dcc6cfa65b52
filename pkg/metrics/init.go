package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.SSESubscribers = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mindmap_sse_subscribers",
			Help: "Number of open event stream subscriptions",
		},
		[]string{"topic"},
	)
}

func (r *Registry) initLayoutMetrics() {
	r.SimulationTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "mindmap_simulation_ticks_total",
			Help: "Total number of simulation integration steps",
		},
	)

	r.SimulationTickSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mindmap_simulation_tick_duration_seconds",
			Help:    "Time spent in one simulation step",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mindmap_simulation_alpha",
			Help: "Current simulation energy",
		},
	)

	r.SimulationReheats = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmap_simulation_reheats_total",
			Help: "Simulation energy restarts by cause",
		},
		[]string{"cause"},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mindmap_graph_nodes",
			Help: "Number of nodes in the map",
		},
	)

	r.GraphLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mindmap_graph_links",
			Help: "Number of links in the map",
		},
	)

	r.GraphMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmap_graph_mutations_total",
			Help: "Graph mutations by operation",
		},
		[]string{"op"}, // add, add_list, delete, undo, edit, reset
	)

	r.HistoryEntries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "mindmap_history_entries",
			Help: "Number of entries in the undo history",
		},
	)

	r.UndoTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmap_undo_total",
			Help: "Undo attempts by result",
		},
		[]string{"result"}, // ok, empty, irreversible
	)
}

func (r *Registry) initSuggestMetrics() {
	r.SuggestRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindmap_suggest_requests_total",
			Help: "Suggestion collaborator requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	r.SuggestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindmap_suggest_duration_seconds",
			Help:    "Suggestion collaborator latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	r.SuggestStaleTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "mindmap_suggest_stale_total",
			Help: "Suggestion results discarded because their node moved on",
		},
	)
}
