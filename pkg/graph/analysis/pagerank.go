package analysis

import "math"

// PageRankOptions configures the power iteration.
type PageRankOptions struct {
	DampingFactor float64
	MaxIterations int
	Tolerance     float64
}

// pageRankTier picks iteration/tolerance parameters by graph size:
// looser tolerance and fewer iterations for larger graphs to bound
// latency.
func pageRankTier(nodeCount int) PageRankOptions {
	opts := PageRankOptions{DampingFactor: 0.85}
	switch {
	case nodeCount < 200:
		opts.MaxIterations, opts.Tolerance = 100, 1e-6
	case nodeCount < 500:
		opts.MaxIterations, opts.Tolerance = 50, 1e-5
	default:
		opts.MaxIterations, opts.Tolerance = 30, 1e-4
	}
	return opts
}

// PageRank computes pagerank scores honoring edge weights. Dangling mass
// is redistributed uniformly; scores sum to 1.
func PageRank(g *DiGraph, opts PageRankOptions) map[string]float64 {
	scores := pageRankIndexed(g, opts, true)
	return toScoreMap(g, scores)
}

// fastPageRank is the alternate variant selected for larger graphs. It
// skips per-edge weight lookups entirely and therefore handles only
// unweighted graphs; ok is false when the graph carries weights and the
// caller must fall back to the standard variant.
func fastPageRank(g *DiGraph, opts PageRankOptions) (map[string]float64, bool) {
	if g.Weighted() {
		return nil, false
	}
	scores := pageRankIndexed(g, opts, false)
	return toScoreMap(g, scores), true
}

func pageRankIndexed(g *DiGraph, opts PageRankOptions, useWeights bool) []float64 {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	scores := make([]float64, n)
	newScores := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}

	outWeightSum := make([]float64, n)
	for u := 0; u < n; u++ {
		if useWeights {
			for _, w := range g.outW[u] {
				outWeightSum[u] += w
			}
		} else {
			outWeightSum[u] = float64(len(g.out[u]))
		}
	}

	base := (1.0 - opts.DampingFactor) / float64(n)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		danglingSum := 0.0
		for u := 0; u < n; u++ {
			if len(g.out[u]) == 0 {
				danglingSum += scores[u]
			}
		}
		danglingShare := opts.DampingFactor * danglingSum / float64(n)

		for v := 0; v < n; v++ {
			newScores[v] = base + danglingShare
		}
		for u := 0; u < n; u++ {
			if outWeightSum[u] == 0 {
				continue
			}
			share := opts.DampingFactor * scores[u] / outWeightSum[u]
			for k, v := range g.out[u] {
				if useWeights {
					newScores[v] += share * g.outW[u][k]
				} else {
					newScores[v] += share
				}
			}
		}

		maxDiff := 0.0
		for i := range scores {
			if diff := math.Abs(newScores[i] - scores[i]); diff > maxDiff {
				maxDiff = diff
			}
		}
		scores, newScores = newScores, scores
		if maxDiff < opts.Tolerance {
			break
		}
	}

	// Normalize to sum to 1
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum > 0 {
		for i := range scores {
			scores[i] /= sum
		}
	}
	return scores
}

func toScoreMap(g *DiGraph, scores []float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for i, id := range g.ids {
		out[id] = scores[i]
	}
	return out
}
