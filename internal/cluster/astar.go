package cluster

import (
	"container/heap"

	"github.com/questmap/worldroute/internal/grid"
)

// pathNode is a node in the intra-cluster A* search.
type pathNode struct {
	coord  grid.Coord
	parent *pathNode
	dir    grid.Direction // arrival direction from parent
	steps  int32          // tiles moved from parent (1 unless accelerated)
	g, f   int32
	seq    int64 // insertion order, breaks remaining ties deterministically
	index  int   // heap index
}

type pathHeap []*pathNode

func (h pathHeap) Len() int { return len(h) }
func (h pathHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].seq < h[j].seq
}
func (h pathHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *pathHeap) Push(x any)   { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}

// octile is the admissible grid distance in movement units.
func octile(a, b grid.Coord) int32 {
	dx := abs32(b.X - a.X)
	dy := abs32(b.Y - a.Y)
	lo, hi := dx, dy
	if lo > hi {
		lo, hi = hi, lo
	}
	return grid.StraightCost*(hi-lo) + grid.DiagonalCost*lo
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// intraSearch finds the shortest path between two tiles restricted to the
// member set. Returns the cost and the full tile path, or ok=false when the
// goal is unreachable inside the cluster. When acc is non-nil, expansion
// jumps over uniform corridor runs; costs are identical either way.
func intraSearch(g *grid.Grid, members map[grid.Coord]struct{}, start, goal grid.Coord, acc *spanAccel) (int32, []grid.Coord, bool) {
	inside := func(c grid.Coord) bool {
		_, ok := members[c]
		return ok
	}
	if !inside(start) || !inside(goal) {
		return 0, nil, false
	}

	var seq int64
	startNode := &pathNode{coord: start, f: octile(start, goal)}

	open := &pathHeap{}
	heap.Init(open)
	heap.Push(open, startNode)
	closed := make(map[grid.Coord]struct{}, len(members))
	best := map[grid.Coord]int32{start: 0}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		if cur.coord == goal {
			return cur.g, reconstruct(cur), true
		}
		if _, ok := closed[cur.coord]; ok {
			continue
		}
		closed[cur.coord] = struct{}{}

		for _, d := range grid.Cardinals {
			if !g.CanStep(cur.coord, d) || !inside(cur.coord.Step(d)) {
				continue
			}
			next, steps := advance(cur.coord, d, goal, inside, acc)
			relax(open, closed, best, cur, next, d, steps, goal, &seq)
		}
		for _, d := range grid.Diagonals {
			if !g.CanStep(cur.coord, d) || !inside(cur.coord.Step(d)) {
				continue
			}
			relax(open, closed, best, cur, cur.coord.Step(d), d, 1, goal, &seq)
		}
	}
	return 0, nil, false
}

// advance moves one step in d, then keeps sliding while the run stays a
// uniform corridor. Pure acceleration: every skipped tile has no exit other
// than continuing straight, so no optimal path is lost.
func advance(c grid.Coord, d grid.Direction, goal grid.Coord, inside func(grid.Coord) bool, acc *spanAccel) (grid.Coord, int32) {
	next := c.Step(d)
	steps := int32(1)
	if acc == nil {
		return next, steps
	}
	for next != goal && acc.corridor(next, d) && inside(next.Step(d)) {
		next = next.Step(d)
		steps++
	}
	return next, steps
}

func relax(open *pathHeap, closed map[grid.Coord]struct{}, best map[grid.Coord]int32, cur *pathNode, next grid.Coord, d grid.Direction, steps int32, goal grid.Coord, seq *int64) {
	if _, ok := closed[next]; ok {
		return
	}
	tentative := cur.g + d.Cost()*steps
	if prev, ok := best[next]; ok && tentative >= prev {
		return
	}
	best[next] = tentative
	*seq++
	node := &pathNode{
		coord:  next,
		parent: cur,
		dir:    d,
		steps:  steps,
		g:      tentative,
		f:      tentative + octile(next, goal),
		seq:    *seq,
	}
	heap.Push(open, node)
}

// reconstruct expands the parent chain back into the full tile path,
// re-walking accelerated runs step by step.
func reconstruct(end *pathNode) []grid.Coord {
	var rev []grid.Coord
	for n := end; n != nil; n = n.parent {
		if n.parent == nil {
			rev = append(rev, n.coord)
			break
		}
		c := n.coord
		back := n.dir.Opposite()
		for i := int32(0); i < n.steps; i++ {
			rev = append(rev, c)
			c = c.Step(back)
		}
	}
	// Reverse into start-to-goal order.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// CompressWaypoints removes collinear interior points, keeping endpoints
// and turns.
func CompressWaypoints(path []grid.Coord) []grid.Coord {
	if len(path) <= 2 {
		return path
	}
	dirOf := func(a, b grid.Coord) [2]int32 {
		return [2]int32{sign(b.X - a.X), sign(b.Y - a.Y)}
	}
	out := []grid.Coord{path[0]}
	prev := dirOf(path[0], path[1])
	for i := 1; i < len(path)-1; i++ {
		d := dirOf(path[i], path[i+1])
		if d != prev {
			out = append(out, path[i])
			prev = d
		}
	}
	return append(out, path[len(path)-1])
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
