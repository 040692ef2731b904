// Package analysis computes in-memory graph metrics over normalized
// query results. It consumes GraphData snapshots only and never touches
// the graph store; every pass is request-scoped and needs no locking.
package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/metrics"
)

// Size ceilings bounding analysis cost.
const (
	MaxNodesForPagerank      = 500
	MaxNodesForHeavyAnalysis = 500
	MaxEdgesForHeavyAnalysis = 2000

	// fastPagerankThreshold is the node count above which the indexed
	// fast variant is preferred.
	fastPagerankThreshold = 200
)

var log = func() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}()

// Options selects which metrics to compute.
type Options struct {
	IncludeDegree      bool
	IncludePagerank    bool
	IncludeBetweenness bool
	IncludeComponents  bool
	UseEdgeWeight      bool
}

// DefaultOptions matches the dashboard's first-screen request:
// everything except betweenness, which must be asked for explicitly.
func DefaultOptions() Options {
	return Options{
		IncludeDegree:     true,
		IncludePagerank:   true,
		IncludeComponents: true,
		UseEdgeWeight:     true,
	}
}

// Result is the JSON-serializable analysis outcome. Skipped markers are
// capability-withheld explanations, never errors.
type Result struct {
	Available bool `json:"available"`
	NodeCount int  `json:"node_count"`
	EdgeCount int  `json:"edge_count"`

	DegreeCentrality map[string]float64 `json:"degree_centrality,omitempty"`

	Pagerank        map[string]float64 `json:"pagerank,omitempty"`
	PagerankSkipped string             `json:"pagerank_skipped,omitempty"`

	BetweennessCentrality map[string]float64 `json:"betweenness_centrality,omitempty"`
	BetweennessSkipped    string             `json:"betweenness_centrality_skipped,omitempty"`

	ComponentCount       int `json:"n_weakly_connected_components"`
	LargestComponentSize int `json:"largest_component_size"`

	SuggestedFocusNodeID string `json:"suggested_focus_node_id,omitempty"`
	SuggestedFocusReason string `json:"suggested_focus_reason,omitempty"`
}

// Run executes the requested metrics over one GraphData snapshot,
// selecting algorithm variants by graph size.
func Run(data graph.GraphData, opts Options) *Result {
	result := &Result{
		NodeCount: len(data.Nodes),
		EdgeCount: len(data.Edges),
	}

	if len(data.Nodes) == 0 && len(data.Edges) == 0 {
		result.Available = true
		return result
	}

	g := FromGraphData(View(data), opts.UseEdgeWeight)
	result.Available = true
	n := g.NodeCount()

	if opts.IncludeDegree {
		result.DegreeCentrality = DegreeCentrality(g)
	}

	if opts.IncludePagerank {
		if n > MaxNodesForPagerank {
			result.Pagerank = map[string]float64{}
			result.PagerankSkipped = fmt.Sprintf("graph too large (node limit: %d)", MaxNodesForPagerank)
			metrics.AnalysisSkipped.WithLabelValues("pagerank").Inc()
		} else {
			tier := pageRankTier(n)
			if n >= fastPagerankThreshold {
				if scores, ok := fastPageRank(g, tier); ok {
					result.Pagerank = scores
				} else {
					result.Pagerank = PageRank(g, tier)
				}
			} else {
				result.Pagerank = PageRank(g, tier)
			}
		}
	}

	if opts.IncludeBetweenness {
		if n <= MaxNodesForHeavyAnalysis && g.EdgeCount() <= MaxEdgesForHeavyAnalysis {
			result.BetweennessCentrality = BetweennessCentrality(g)
		} else {
			result.BetweennessCentrality = map[string]float64{}
			result.BetweennessSkipped = "graph too large (node/edge limit)"
			metrics.AnalysisSkipped.WithLabelValues("betweenness").Inc()
		}
	}

	if opts.IncludeComponents {
		result.ComponentCount, result.LargestComponentSize = WeaklyConnectedComponents(g)
	}

	id, reason := SuggestedFocusNode(g, result.DegreeCentrality, result.Pagerank)
	if id != "" {
		result.SuggestedFocusNodeID = id
		result.SuggestedFocusReason = reason
	} else {
		log.Debug("no focus node suggestion for this graph")
	}

	return result
}
