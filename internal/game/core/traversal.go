package core

// Distances runs a breadth-first search from `from` over walkable cells and
// returns the step distance to every cell in row-major order. Unreached cells
// and walls hold -1.
func (g *Grid) Distances(from Coordinate) []int {
	dist := make([]int, len(g.cells))
	for i := range dist {
		dist[i] = -1
	}
	if !g.At(from).IsWalkable() {
		return dist
	}

	start := from.ToIndex(g.cols)
	dist[start] = 0
	queue := []int{start}
	for head := 0; head < len(queue); head++ {
		cur := FromIndex(queue[head], g.cols)
		d := dist[queue[head]]
		for _, n := range cur.Neighbors() {
			if !g.At(n).IsWalkable() {
				continue
			}
			idx := n.ToIndex(g.cols)
			if dist[idx] >= 0 {
				continue
			}
			dist[idx] = d + 1
			queue = append(queue, idx)
		}
	}
	return dist
}

// Farthest returns the cell with the largest finite distance, breaking ties
// by lowest row-major index. ok is false when no cell was reached.
func (g *Grid) Farthest(dist []int) (c Coordinate, d int, ok bool) {
	best := -1
	for i, v := range dist {
		if v > best {
			best = v
			c = FromIndex(i, g.cols)
		}
	}
	return c, best, best >= 0
}

// Components labels every walkable cell with the index of its connected
// component (walls hold -1). Components are numbered in row-major order of
// their first cell.
func (g *Grid) Components() (labels []int, count int) {
	labels = make([]int, len(g.cells))
	for i := range labels {
		labels[i] = -1
	}
	for i, code := range g.cells {
		if !code.IsWalkable() || labels[i] >= 0 {
			continue
		}
		labels[i] = count
		queue := []int{i}
		for head := 0; head < len(queue); head++ {
			cur := FromIndex(queue[head], g.cols)
			for _, n := range cur.Neighbors() {
				if !g.At(n).IsWalkable() {
					continue
				}
				idx := n.ToIndex(g.cols)
				if labels[idx] >= 0 {
					continue
				}
				labels[idx] = count
				queue = append(queue, idx)
			}
		}
		count++
	}
	return labels, count
}

// IsConnected reports whether every walkable cell is reachable from `from`.
func (g *Grid) IsConnected(from Coordinate) bool {
	dist := g.Distances(from)
	for i, code := range g.cells {
		if code.IsWalkable() && dist[i] < 0 {
			return false
		}
	}
	return true
}
