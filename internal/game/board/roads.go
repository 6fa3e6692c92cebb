package board

// LongestRoad returns the length of owner's longest trail of roads. A trail
// never reuses an edge and cannot pass through a point holding another
// player's building.
func (b *Board) LongestRoad(owner int) int {
	best := 0
	visited := make([]bool, len(b.Edges))
	for _, e := range b.Edges {
		if e.Owner != owner {
			continue
		}
		for _, start := range [2]int{e.A, e.B} {
			visited[e.ID] = true
			if n := 1 + b.extendTrail(owner, e.Other(start), visited); n > best {
				best = n
			}
			visited[e.ID] = false
		}
	}
	return best
}

// extendTrail returns the longest continuation from point using unvisited edges.
func (b *Board) extendTrail(owner, point int, visited []bool) int {
	p := b.Points[point]
	if p.IsOccupied() && p.Owner != owner {
		return 0
	}
	best := 0
	for _, eid := range p.Edges {
		e := b.Edges[eid]
		if visited[eid] || e.Owner != owner {
			continue
		}
		visited[eid] = true
		if n := 1 + b.extendTrail(owner, e.Other(point), visited); n > best {
			best = n
		}
		visited[eid] = false
	}
	return best
}
