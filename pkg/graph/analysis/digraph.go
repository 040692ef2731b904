package analysis

import (
	"github.com/graphlens/graphlens/pkg/graph"
)

// DiGraph is the in-memory directed graph the analytics run on. Node
// iteration order follows GraphData insertion order, which keeps every
// scan deterministic for a fixed input.
type DiGraph struct {
	ids    []string
	index  map[string]int
	labels []string

	out      [][]int
	in       [][]int
	outW     [][]float64
	weighted bool

	edgeCount int
}

// FromGraphData builds a DiGraph. When useEdgeWeight is set, an edge's
// weight is taken from its stockRatio property (or the pct alias) when
// the value is numeric; otherwise the edge is unweighted. Duplicate
// (source, target) pairs collapse into one edge, first weight wins.
func FromGraphData(data GraphDataView, useEdgeWeight bool) *DiGraph {
	g := &DiGraph{
		ids:    make([]string, 0, len(data.Nodes)),
		index:  make(map[string]int, len(data.Nodes)),
		labels: make([]string, 0, len(data.Nodes)),
	}

	for _, node := range data.Nodes {
		if _, ok := g.index[node.ID]; ok {
			continue
		}
		g.index[node.ID] = len(g.ids)
		g.ids = append(g.ids, node.ID)
		g.labels = append(g.labels, node.Label)
	}

	n := len(g.ids)
	g.out = make([][]int, n)
	g.in = make([][]int, n)
	g.outW = make([][]float64, n)

	type edgeKey struct{ u, v int }
	seen := make(map[edgeKey]struct{}, len(data.Edges))

	for _, edge := range data.Edges {
		u, okU := g.index[edge.Source]
		v, okV := g.index[edge.Target]
		if !okU || !okV {
			continue
		}
		key := edgeKey{u, v}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		weight := 1.0
		if useEdgeWeight {
			if w, ok := edgeWeight(edge.Properties); ok {
				weight = w
				g.weighted = true
			}
		}

		g.out[u] = append(g.out[u], v)
		g.outW[u] = append(g.outW[u], weight)
		g.in[v] = append(g.in[v], u)
		g.edgeCount++
	}

	return g
}

// GraphDataView decouples the analytics from the model package's concrete
// container: anything carrying nodes and edges in order works.
type GraphDataView struct {
	Nodes []graph.GraphNode
	Edges []graph.GraphEdge
}

// View adapts a GraphData.
func View(data graph.GraphData) GraphDataView {
	return GraphDataView{Nodes: data.Nodes, Edges: data.Edges}
}

// NodeCount returns the number of nodes.
func (g *DiGraph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of distinct directed edges.
func (g *DiGraph) EdgeCount() int { return g.edgeCount }

// Weighted reports whether any edge carries a ratio-derived weight.
func (g *DiGraph) Weighted() bool { return g.weighted }

func edgeWeight(props map[string]interface{}) (float64, bool) {
	for _, key := range []string{graph.PropStockRatio, graph.PropPct} {
		switch v := props[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}
