package analysis

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Focus node reasons.
const (
	FocusReasonDiverse  = "diverse"
	FocusReasonFallback = "fallback"
)

const (
	// MinDiverseNeighborLabels is the neighbor-category diversity a node
	// needs to qualify as a first-screen focus candidate.
	MinDiverseNeighborLabels = 2

	// Above focusSampleThreshold nodes, the diversity scan is restricted
	// to the focusTopK nodes by the primary metric to bound cost.
	focusSampleThreshold = 500
	focusTopK            = 200
)

// neighborLabelDiversity counts distinct labels over the union of a
// node's predecessors and successors.
func neighborLabelDiversity(g *DiGraph, u int) int {
	labels := mapset.NewThreadUnsafeSet[string]()
	for _, v := range g.out[u] {
		if lb := g.labels[v]; lb != "" {
			labels.Add(lb)
		}
	}
	for _, v := range g.in[u] {
		if lb := g.labels[v]; lb != "" {
			labels.Add(lb)
		}
	}
	return labels.Cardinality()
}

// SuggestedFocusNode picks the single node the first screen should
// center on: among nodes whose neighbor labels are diverse enough, the
// one maximizing the primary metric (degree centrality, pagerank when
// the degree map is empty); when no node passes the diversity filter,
// the global metric maximum. Ties resolve to the first node reaching the
// maximum in iteration order, so the result is deterministic for fixed
// inputs. Returns ("", "") when there is nothing to suggest.
func SuggestedFocusNode(g *DiGraph, degreeCentrality, pagerank map[string]float64) (string, string) {
	if g.NodeCount() == 0 {
		return "", ""
	}
	scores := degreeCentrality
	if len(scores) == 0 {
		scores = pagerank
	}
	if len(scores) == 0 {
		return "", ""
	}

	pool := make([]int, g.NodeCount())
	for i := range pool {
		pool[i] = i
	}
	if g.NodeCount() > focusSampleThreshold {
		// Restrict the diversity scan to the top-K nodes by metric.
		sort.SliceStable(pool, func(a, b int) bool {
			return scores[g.ids[pool[a]]] > scores[g.ids[pool[b]]]
		})
		if len(pool) > focusTopK {
			pool = pool[:focusTopK]
		}
	}

	candidates := make([]int, 0, len(pool))
	for _, u := range pool {
		if neighborLabelDiversity(g, u) >= MinDiverseNeighborLabels {
			candidates = append(candidates, u)
		}
	}

	if id := bestByScore(g, candidates, scores); id != "" {
		return id, FocusReasonDiverse
	}

	all := make([]int, g.NodeCount())
	for i := range all {
		all[i] = i
	}
	if id := bestByScore(g, all, scores); id != "" {
		return id, FocusReasonFallback
	}
	return "", ""
}

func bestByScore(g *DiGraph, nodes []int, scores map[string]float64) string {
	bestID, bestVal := "", -1.0
	for _, u := range nodes {
		if v, ok := scores[g.ids[u]]; ok && v > bestVal {
			bestVal = v
			bestID = g.ids[u]
		}
	}
	return bestID
}
