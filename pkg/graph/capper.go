package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// ApplyNodeCap enforces a node-count ceiling on a built graph. When the
// graph exceeds maxNodes, the node list is truncated to the first
// maxNodes entries (first-seen order) and the edge list filtered to edges
// whose endpoints both survive, so the returned graph never contains a
// dangling edge. maxNodes <= 0 means no ceiling.
func ApplyNodeCap(data GraphData, maxNodes int) GraphData {
	if maxNodes <= 0 || len(data.Nodes) <= maxNodes {
		return data
	}

	nodes := data.Nodes[:maxNodes]
	retained := mapset.NewThreadUnsafeSet[string]()
	for _, n := range nodes {
		retained.Add(n.ID)
	}

	edges := make([]GraphEdge, 0, len(data.Edges))
	for _, e := range data.Edges {
		if retained.Contains(e.Source) && retained.Contains(e.Target) {
			edges = append(edges, e)
		}
	}

	return GraphData{Nodes: nodes, Edges: edges}
}
