package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph metrics
	GraphNodeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_nodes_total",
			Help: "Number of nodes in the last built graph result",
		},
		[]string{"node_type"},
	)

	GraphEdgeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_edges_total",
			Help: "Number of edges in the last built graph result",
		},
		[]string{"edge_type"},
	)

	// Gateway metrics
	GatewayQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_query_duration_seconds",
			Help: "Time spent executing graph store queries",
		},
		[]string{"operation"},
	)

	GatewayQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_query_errors_total",
			Help: "Total number of graph store query failures",
		},
		[]string{"operation", "kind"},
	)

	// Analytics metrics
	AnalysisSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_skipped_total",
			Help: "Analytics passes withheld by size ceilings",
		},
		[]string{"metric"},
	)

	// Chat pipeline metrics
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat pipeline completions by outcome source",
		},
		[]string{"source"},
	)

	ChatPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_pipeline_duration_seconds",
			Help: "End-to-end chat pipeline latency",
		},
		[]string{"source"},
	)
)

// ObserveGraph records node/edge gauge values for a built result.
func ObserveGraph(nodesByType, edgesByType map[string]int) {
	for label, count := range nodesByType {
		GraphNodeCount.WithLabelValues(label).Set(float64(count))
	}
	for label, count := range edgesByType {
		GraphEdgeCount.WithLabelValues(label).Set(float64(count))
	}
}
