package snapshot

import (
	"container/heap"

	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// Landmark count bounds. Below the floor the bounds are too weak to pay for
// their lookups; above the ceiling the tables dominate snapshot size.
const (
	MinLandmarks = 16
	MaxLandmarks = 64
)

type distItem struct {
	coord grid.Coord
	dist  int32
	index int
}

type distHeap []*distItem

func (h distHeap) Len() int            { return len(h) }
func (h distHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *distHeap) Push(x any)         { it := x.(*distItem); it.index = len(*h); *h = append(*h, it) }
func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// tileGraph is the unrestricted tile-level graph used for landmark tables:
// every walk edge and every teleport edge regardless of requirements.
// Requirement filtering only removes edges, so distances computed here lower
// bound any profile's distances.
type tileGraph struct {
	g           *grid.Grid
	edges       *teleport.Set
	teleportsAt map[grid.Coord][]int32
	globals     []int32

	// reverse teleport adjacency: destination anchor -> localized edge indexes
	revTeleports map[grid.Coord][]int32
	// source tiles per localized edge, restricted to compiled tiles
	sourceTiles map[int32][]grid.Coord
}

func newTileGraph(g *grid.Grid, edges *teleport.Set, teleportsAt map[grid.Coord][]int32, globals []int32) *tileGraph {
	tg := &tileGraph{
		g:            g,
		edges:        edges,
		teleportsAt:  teleportsAt,
		globals:      globals,
		revTeleports: make(map[grid.Coord][]int32),
		sourceTiles:  make(map[int32][]grid.Coord),
	}
	for c, idx := range teleportsAt {
		for _, i := range idx {
			tg.sourceTiles[i] = append(tg.sourceTiles[i], c)
		}
	}
	for i := range tg.sourceTiles {
		anchor := edges.Edges[i].Dest.Anchor()
		tg.revTeleports[anchor] = append(tg.revTeleports[anchor], i)
	}
	return tg
}

// forward computes distances from src to every reachable tile.
func (tg *tileGraph) forward(src grid.Coord) map[grid.Coord]int32 {
	dist := map[grid.Coord]int32{src: 0}
	open := &distHeap{}
	heap.Push(open, &distItem{coord: src})

	// Global teleports are usable from anywhere, src included, so their
	// destinations are reachable at edge cost from the start.
	for _, i := range tg.globals {
		e := &tg.edges.Edges[i]
		relaxDist(dist, open, e.Dest.Anchor(), e.Cost)
	}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*distItem)
		if cur.dist > dist[cur.coord] {
			continue
		}
		c, d0 := cur.coord, cur.dist
		for _, d := range grid.AllDirections {
			if tg.g.CanStep(c, d) {
				relaxDist(dist, open, c.Step(d), d0+d.Cost())
			}
		}
		for _, i := range tg.teleportsAt[c] {
			e := &tg.edges.Edges[i]
			relaxDist(dist, open, e.Dest.Anchor(), d0+e.Cost)
		}
	}
	return dist
}

// backward computes distances from every tile to dst, walking the reverse
// graph. Cardinal reciprocity makes walk edges self-reversing; teleports use
// the precomputed reverse adjacency. Global teleports reverse into a single
// clamp: once their destination anchor can reach dst, every tile can, at
// anchor distance plus edge cost.
func (tg *tileGraph) backward(dst grid.Coord) map[grid.Coord]int32 {
	dist := map[grid.Coord]int32{dst: 0}
	open := &distHeap{}
	heap.Push(open, &distItem{coord: dst})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*distItem)
		if cur.dist > dist[cur.coord] {
			continue
		}
		c, d0 := cur.coord, cur.dist
		for _, d := range grid.AllDirections {
			n := c.Step(d)
			if tg.g.CanStep(n, d.Opposite()) {
				relaxDist(dist, open, n, d0+d.Cost())
			}
		}
		for _, i := range tg.revTeleports[c] {
			e := &tg.edges.Edges[i]
			for _, s := range tg.sourceTiles[i] {
				relaxDist(dist, open, s, d0+e.Cost)
			}
		}
	}

	var anyDist int32 = -1
	for _, i := range tg.globals {
		e := &tg.edges.Edges[i]
		if d, ok := dist[e.Dest.Anchor()]; ok {
			if anyDist < 0 || d+e.Cost < anyDist {
				anyDist = d + e.Cost
			}
		}
	}
	if anyDist >= 0 {
		// A path taken after the clamp cannot beat the clamp itself, so a
		// single pass over the tile set suffices.
		for _, c := range tg.g.Coords() {
			if d, ok := dist[c]; !ok || d > anyDist {
				dist[c] = anyDist
			}
		}
	}
	return dist
}

func relaxDist(dist map[grid.Coord]int32, open *distHeap, c grid.Coord, d int32) {
	if prev, ok := dist[c]; ok && prev <= d {
		return
	}
	dist[c] = d
	heap.Push(open, &distItem{coord: c, dist: d})
}

// selectLandmarks picks up to count hubs by farthest-point selection: the
// seed is the busiest entrance coordinate, each next landmark maximizes the
// minimum forward distance from those already chosen.
func selectLandmarks(tg *tileGraph, seed grid.Coord, count int) ([]grid.Coord, []map[grid.Coord]int32, []map[grid.Coord]int32) {
	if count < MinLandmarks {
		count = MinLandmarks
	}
	if count > MaxLandmarks {
		count = MaxLandmarks
	}
	if tg.g.Len() < count {
		count = tg.g.Len()
	}

	var (
		landmarks []grid.Coord
		from      []map[grid.Coord]int32
		to        []map[grid.Coord]int32
		chosen    = map[grid.Coord]struct{}{}
	)

	next := seed
	for len(landmarks) < count {
		landmarks = append(landmarks, next)
		chosen[next] = struct{}{}
		from = append(from, tg.forward(next))
		to = append(to, tg.backward(next))

		best, found := grid.Coord{}, false
		var bestDist int32 = -1
		for _, c := range tg.g.Coords() {
			if _, ok := chosen[c]; ok {
				continue
			}
			minDist, reachable := int32(-1), true
			for _, f := range from {
				d, ok := f[c]
				if !ok {
					reachable = false
					break
				}
				if minDist < 0 || d < minDist {
					minDist = d
				}
			}
			if !reachable {
				continue
			}
			if minDist > bestDist {
				best, bestDist, found = c, minDist, true
			}
		}
		if !found {
			break
		}
		next = best
	}
	return landmarks, from, to
}
