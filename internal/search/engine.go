package search

import (
	"container/heap"
	"context"

	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/snapshot"
	"github.com/questmap/worldroute/internal/teleport"
)

// Status classifies a query outcome. A query never returns a silently wrong
// route: anything other than Found carries no geometry.
type Status uint8

const (
	StatusFound Status = iota + 1
	StatusNoPath
	StatusUnreachable
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoPath:
		return "no_path"
	case StatusUnreachable:
		return "unreachable"
	case StatusTimeout:
		return "timeout"
	}
	return "unknown"
}

// Result is the answer to one route query.
type Result struct {
	Status    Status
	Cost      int32
	Length    int32 // steps along the route, teleports counted as one
	Segments  []Segment
	Waypoints []grid.Coord
	Expanded  int // popped nodes, for diagnostics
}

// DefaultMaxExpansions caps a single query's work independently of the
// caller's deadline.
const DefaultMaxExpansions = 1 << 20

// Engine answers route queries against one acquired snapshot. Stateless
// between calls; safe for concurrent use.
type Engine struct {
	snap          *snapshot.Snapshot
	maxExpansions int
}

// New returns an engine bound to snap.
func New(snap *snapshot.Snapshot) *Engine {
	return &Engine{snap: snap, maxExpansions: DefaultMaxExpansions}
}

// WithMaxExpansions overrides the per-query expansion cap.
func (e *Engine) WithMaxExpansions(n int) *Engine {
	if n > 0 {
		e.maxExpansions = n
	}
	return e
}

type stepKind uint8

const (
	stepWalk stepKind = iota + 1
	stepAbstract
	stepTeleport
)

type via struct {
	kind      stepKind
	dir       grid.Direction // walk
	waypoints []grid.Coord   // abstract
	edge      *teleport.Edge // teleport
}

type node struct {
	coord  grid.Coord
	parent *node
	via    via
	g, f   int32
	seq    int64
	index  int
}

// openHeap orders by f ascending; ties prefer the larger g (deeper along its
// path), then insertion order, so equal-cost queries expand identically
// across runs.
type openHeap []*node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g > h[j].g
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x any)   { n := x.(*node); n.index = len(*h); *h = append(*h, n) }
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Route runs A* from start to goal under the given profile. The context is
// observed on every expansion; cancellation or the expansion cap yield
// StatusTimeout with partial diagnostics.
func (e *Engine) Route(ctx context.Context, start, goal grid.Coord, prof Profile) Result {
	if !e.snap.Contains(start) || !e.snap.Contains(goal) {
		return Result{Status: StatusUnreachable}
	}
	return e.run(ctx, start, goal, prof, e.heuristic(goal))
}

// Dijkstra runs the same search without a heuristic. Exhaustive and slow;
// exists so optimality of Route can be checked against it.
func (e *Engine) Dijkstra(ctx context.Context, start, goal grid.Coord, prof Profile) Result {
	if !e.snap.Contains(start) || !e.snap.Contains(goal) {
		return Result{Status: StatusUnreachable}
	}
	return e.run(ctx, start, goal, prof, func(grid.Coord) int32 { return 0 })
}

// heuristic returns the admissible lower bound toward goal: octile distance
// capped by the cheapest teleport (a shortcut may undercut straight-line
// distance), raised by the landmark bound. Cross-plane travel without
// teleports is impossible, so its base is zero and the verdict comes from
// the search itself.
func (e *Engine) heuristic(goal grid.Coord) func(grid.Coord) int32 {
	minTel := e.snap.MinTeleportCost()
	hasTel := e.snap.HasTeleports()
	return func(c grid.Coord) int32 {
		var base int32
		if c.Plane == goal.Plane {
			base = octile(c, goal)
			if hasTel && minTel < base {
				base = minTel
			}
		} else if hasTel {
			base = minTel
		}
		if alt := e.snap.ALTBound(c, goal); alt > base {
			base = alt
		}
		return base
	}
}

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

func (e *Engine) run(ctx context.Context, start, goal grid.Coord, prof Profile, h func(grid.Coord) int32) Result {
	var seq int64
	open := &openHeap{}
	heap.Push(open, &node{coord: start, f: h(start)})
	best := map[grid.Coord]int32{start: 0}
	closed := make(map[grid.Coord]struct{})

	expanded := 0
	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Status: StatusTimeout, Expanded: expanded}
		}
		if expanded >= e.maxExpansions {
			return Result{Status: StatusTimeout, Expanded: expanded}
		}

		cur := heap.Pop(open).(*node)
		if cur.coord == goal {
			return buildResult(cur, expanded)
		}
		if _, ok := closed[cur.coord]; ok {
			continue
		}
		closed[cur.coord] = struct{}{}
		expanded++

		e.expand(cur, prof, func(to grid.Coord, cost int32, v via) {
			if _, ok := closed[to]; ok {
				return
			}
			tentative := cur.g + cost
			if prev, ok := best[to]; ok && tentative >= prev {
				return
			}
			best[to] = tentative
			seq++
			heap.Push(open, &node{
				coord:  to,
				parent: cur,
				via:    v,
				g:      tentative,
				f:      tentative + h(to),
				seq:    seq,
			})
		})
	}
	return Result{Status: StatusNoPath, Expanded: expanded}
}

// expand yields every outgoing edge of cur's tile: walk steps, abstraction
// edges when the tile is an entrance, localized teleports covering the tile
// and eligible global teleports.
func (e *Engine) expand(cur *node, prof Profile, yield func(grid.Coord, int32, via)) {
	c := cur.coord
	g := e.snap.Grid()

	for _, d := range grid.AllDirections {
		if g.CanStep(c, d) {
			yield(c.Step(d), d.Cost(), via{kind: stepWalk, dir: d})
		}
	}

	for _, ent := range e.snap.EntrancesAt(c) {
		for _, ae := range e.snap.AbstractNeighbors(ent.ID) {
			target, ok := e.snap.Entrance(ae.To)
			if !ok {
				continue
			}
			yield(target.Coord, ae.Cost, via{kind: stepAbstract, waypoints: ae.Waypoints})
		}
	}

	for _, te := range e.snap.TeleportsAt(c) {
		if te.Eligible(prof.Mask) {
			yield(te.Dest.Anchor(), te.Cost, via{kind: stepTeleport, edge: te})
		}
	}
	for _, te := range e.snap.GlobalTeleports() {
		if te.Eligible(prof.Mask) {
			yield(te.Dest.Anchor(), te.Cost, via{kind: stepTeleport, edge: te})
		}
	}
}
