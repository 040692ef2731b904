package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlens/graphlens/pkg/graph"
)

func TestSuggestedFocusNodeDiverse(t *testing.T) {
	// mixed: connected to a Person and a Company; plain: two Person
	// neighbors with a higher degree.
	data := graph.GraphData{
		Nodes: []graph.GraphNode{
			node("mixed", "Company"),
			node("p1", "Person"), node("c1", "Company"),
			node("plain", "Company"),
			node("p2", "Person"), node("p3", "Person"), node("p4", "Person"),
		},
		Edges: []graph.GraphEdge{
			edge("p1", "mixed"), edge("c1", "mixed"),
			edge("p2", "plain"), edge("p3", "plain"), edge("p4", "plain"),
		},
	}
	g := FromGraphData(View(data), false)
	degree := DegreeCentrality(g)

	id, reason := SuggestedFocusNode(g, degree, nil)

	// plain has the higher degree but fails the diversity filter
	assert.Equal(t, "mixed", id)
	assert.Equal(t, FocusReasonDiverse, reason)
}

func TestSuggestedFocusNodeFallback(t *testing.T) {
	// every node's neighborhood is single-category
	data := graph.GraphData{
		Nodes: []graph.GraphNode{
			node("hub", "Company"),
			node("p1", "Person"), node("p2", "Person"),
		},
		Edges: []graph.GraphEdge{edge("p1", "hub"), edge("p2", "hub")},
	}
	g := FromGraphData(View(data), false)
	degree := DegreeCentrality(g)

	id, reason := SuggestedFocusNode(g, degree, nil)

	assert.Equal(t, "hub", id)
	assert.Equal(t, FocusReasonFallback, reason)
}

func TestSuggestedFocusNodeUsesPagerankWhenDegreeMissing(t *testing.T) {
	data := graph.GraphData{
		Nodes: []graph.GraphNode{node("a", "Person"), node("b", "Company")},
		Edges: []graph.GraphEdge{edge("a", "b")},
	}
	g := FromGraphData(View(data), false)
	pagerank := PageRank(g, pageRankTier(g.NodeCount()))

	id, reason := SuggestedFocusNode(g, nil, pagerank)

	assert.Equal(t, "b", id)
	assert.Equal(t, FocusReasonFallback, reason)
}

func TestSuggestedFocusNodeEmptyInputs(t *testing.T) {
	g := FromGraphData(View(graph.GraphData{}), false)
	id, reason := SuggestedFocusNode(g, nil, nil)
	assert.Empty(t, id)
	assert.Empty(t, reason)

	g = FromGraphData(View(graph.GraphData{Nodes: []graph.GraphNode{node("a", "Person")}}), false)
	id, reason = SuggestedFocusNode(g, nil, nil)
	assert.Empty(t, id)
	assert.Empty(t, reason)
}

func TestSuggestedFocusNodeDeterministicTieBreak(t *testing.T) {
	// two structurally identical hubs; the first in insertion order wins
	data := graph.GraphData{
		Nodes: []graph.GraphNode{
			node("hub1", "Company"), node("hub2", "Company"),
			node("p1", "Person"), node("c1", "Company"),
			node("p2", "Person"), node("c2", "Company"),
		},
		Edges: []graph.GraphEdge{
			edge("p1", "hub1"), edge("c1", "hub1"),
			edge("p2", "hub2"), edge("c2", "hub2"),
		},
	}
	g := FromGraphData(View(data), false)
	degree := DegreeCentrality(g)

	for i := 0; i < 10; i++ {
		id, reason := SuggestedFocusNode(g, degree, nil)
		require.Equal(t, "hub1", id)
		require.Equal(t, FocusReasonDiverse, reason)
	}
}

func TestSuggestedFocusNodeLargeGraphTopK(t *testing.T) {
	// one diverse hub dominating, plus enough filler to cross the
	// sampling threshold
	data := graph.GraphData{
		Nodes: []graph.GraphNode{
			node("hub", "Company"),
			node("p", "Person"), node("c", "Company"),
		},
		Edges: []graph.GraphEdge{edge("p", "hub"), edge("c", "hub")},
	}
	for i := 0; i < focusSampleThreshold; i++ {
		data.Nodes = append(data.Nodes, node(fmt.Sprintf("filler%d", i), "Company"))
	}
	g := FromGraphData(View(data), false)
	degree := DegreeCentrality(g)

	id, reason := SuggestedFocusNode(g, degree, nil)

	assert.Equal(t, "hub", id)
	assert.Equal(t, FocusReasonDiverse, reason)
}
