package analysis

import "container/list"

// WeaklyConnectedComponents counts maximal node sets mutually reachable
// when edge direction is ignored, returning the component count and the
// size of the largest one.
func WeaklyConnectedComponents(g *DiGraph) (count, largest int) {
	n := g.NodeCount()
	visited := make([]bool, n)

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		size := 0
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			v := queue.Remove(queue.Front()).(int)
			size++

			for _, w := range g.out[v] {
				if !visited[w] {
					visited[w] = true
					queue.PushBack(w)
				}
			}
			for _, w := range g.in[v] {
				if !visited[w] {
					visited[w] = true
					queue.PushBack(w)
				}
			}
		}

		count++
		if size > largest {
			largest = size
		}
	}
	return count, largest
}
