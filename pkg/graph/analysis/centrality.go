package analysis

import "container/list"

// DegreeCentrality returns the normalized connectivity score per node:
// (in-degree + out-degree) / (n - 1), in [0, 1] for simple graphs.
func DegreeCentrality(g *DiGraph) map[string]float64 {
	n := g.NodeCount()
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}
	if n == 1 {
		scores[g.ids[0]] = 0
		return scores
	}

	norm := 1.0 / float64(n-1)
	for i, id := range g.ids {
		scores[id] = float64(len(g.out[i])+len(g.in[i])) * norm
	}
	return scores
}

// BetweennessCentrality runs Brandes' algorithm over unweighted shortest
// paths and normalizes by 1/((n-1)(n-2)) for directed graphs. This is the
// heaviest metric and is only invoked below the heavy-analysis ceilings.
func BetweennessCentrality(g *DiGraph) map[string]float64 {
	n := g.NodeCount()
	betweenness := make([]float64, n)

	for source := 0; source < n; source++ {
		stack := make([]int, 0, n)
		predecessors := make([][]int, n)
		sigma := make([]float64, n)
		distance := make([]int, n)
		for i := range distance {
			distance[i] = -1
		}

		sigma[source] = 1
		distance[source] = 0

		queue := list.New()
		queue.PushBack(source)

		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(int)
			stack = append(stack, v)

			for _, w := range g.out[v] {
				if distance[w] < 0 {
					queue.PushBack(w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation of dependencies
		delta := make([]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, pred := range predecessors[w] {
				delta[pred] += (sigma[pred] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	if n > 2 {
		norm := 1.0 / float64((n-1)*(n-2))
		for i := range betweenness {
			betweenness[i] *= norm
		}
	}

	scores := make(map[string]float64, n)
	for i, id := range g.ids {
		scores[id] = betweenness[i]
	}
	return scores
}
