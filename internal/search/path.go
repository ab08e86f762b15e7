package search

import (
	"github.com/questmap/worldroute/internal/cluster"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// SegmentKind distinguishes walked stretches from teleport transitions.
type SegmentKind uint8

const (
	SegmentWalk SegmentKind = iota + 1
	SegmentTeleport
)

func (k SegmentKind) String() string {
	if k == SegmentTeleport {
		return "teleport"
	}
	return "walk"
}

// Segment is one homogeneous stretch of a found route. Walk segments carry
// collinear-compressed waypoints; teleport segments carry the action kind.
type Segment struct {
	Kind      SegmentKind
	From, To  grid.Coord
	Cost      int32
	Teleport  teleport.Kind // teleport segments only
	Waypoints []grid.Coord  // walk segments only
}

// buildResult converts the goal node's parent chain into ordered segments
// and the flat waypoint list.
func buildResult(end *node, expanded int) Result {
	var chain []*node
	for n := end; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	res := Result{Status: StatusFound, Cost: end.g, Expanded: expanded}

	walkTiles := []grid.Coord{chain[0].coord}
	runStartG := int32(0)

	flushWalk := func(endG int32) {
		if len(walkTiles) < 2 {
			return
		}
		way := cluster.CompressWaypoints(walkTiles)
		res.Segments = append(res.Segments, Segment{
			Kind:      SegmentWalk,
			From:      way[0],
			To:        way[len(way)-1],
			Cost:      endG - runStartG,
			Waypoints: way,
		})
	}

	for i := 1; i < len(chain); i++ {
		n := chain[i]
		switch n.via.kind {
		case stepWalk:
			walkTiles = append(walkTiles, n.coord)

		case stepAbstract:
			flushWalk(n.parent.g)
			way := n.via.waypoints
			res.Segments = append(res.Segments, Segment{
				Kind:      SegmentWalk,
				From:      way[0],
				To:        way[len(way)-1],
				Cost:      n.g - n.parent.g,
				Waypoints: way,
			})
			walkTiles = []grid.Coord{n.coord}
			runStartG = n.g

		case stepTeleport:
			flushWalk(n.parent.g)
			res.Segments = append(res.Segments, Segment{
				Kind:     SegmentTeleport,
				From:     n.parent.coord,
				To:       n.coord,
				Cost:     n.g - n.parent.g,
				Teleport: n.via.edge.Kind,
			})
			walkTiles = []grid.Coord{n.coord}
			runStartG = n.g
		}
	}
	flushWalk(end.g)

	res.Waypoints = routeWaypoints(chain[0].coord, res.Segments)
	res.Length = routeLength(res.Segments)
	return res
}

// routeWaypoints flattens segment geometry into one list, deduplicating the
// shared joints.
func routeWaypoints(start grid.Coord, segs []Segment) []grid.Coord {
	out := []grid.Coord{start}
	for _, s := range segs {
		if s.Kind == SegmentTeleport {
			out = append(out, s.To)
			continue
		}
		for _, w := range s.Waypoints {
			if w != out[len(out)-1] {
				out = append(out, w)
			}
		}
	}
	return out
}

// routeLength counts route steps: chebyshev moves along walk geometry, one
// per teleport.
func routeLength(segs []Segment) int32 {
	var total int32
	for _, s := range segs {
		if s.Kind == SegmentTeleport {
			total++
			continue
		}
		for i := 1; i < len(s.Waypoints); i++ {
			a, b := s.Waypoints[i-1], s.Waypoints[i]
			dx, dy := abs32(b.X-a.X), abs32(b.Y-a.Y)
			if dy > dx {
				dx = dy
			}
			total += dx
		}
	}
	return total
}
