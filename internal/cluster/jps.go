package cluster

import (
	"github.com/questmap/worldroute/internal/grid"
)

// spanAccel precomputes, per cluster, which member tiles are pure corridor
// tiles along each cardinal axis. A tile is a corridor for direction d when
// its only passable edges are d and its opposite: the search can slide
// through it without considering turns, since no optimal path can branch
// there. Diagonal moves are never accelerated.
type spanAccel struct {
	horizontal map[grid.Coord]struct{} // corridor along east/west
	vertical   map[grid.Coord]struct{} // corridor along north/south
}

// newSpanAccel scans the member tiles once. Tiles whose passable edges reach
// outside the member set are excluded: a border tile is always a decision
// point.
func newSpanAccel(g *grid.Grid, members map[grid.Coord]struct{}) *spanAccel {
	acc := &spanAccel{
		horizontal: make(map[grid.Coord]struct{}),
		vertical:   make(map[grid.Coord]struct{}),
	}
	for c := range members {
		mask := passableInside(g, members, c)
		switch mask {
		case grid.DirEast | grid.DirWest:
			acc.horizontal[c] = struct{}{}
		case grid.DirNorth | grid.DirSouth:
			acc.vertical[c] = struct{}{}
		}
	}
	return acc
}

func passableInside(g *grid.Grid, members map[grid.Coord]struct{}, c grid.Coord) grid.Direction {
	var mask grid.Direction
	for _, d := range grid.Cardinals {
		if !g.CanStep(c, d) {
			continue
		}
		if _, ok := members[c.Step(d)]; !ok {
			// Edge leaves the member set; treat the tile as a junction.
			return 0
		}
		mask |= d
	}
	for _, d := range grid.Diagonals {
		if g.CanStep(c, d) {
			mask |= d
		}
	}
	return mask
}

// corridor reports whether c can be slid through while moving in d.
func (a *spanAccel) corridor(c grid.Coord, d grid.Direction) bool {
	switch d {
	case grid.DirEast, grid.DirWest:
		_, ok := a.horizontal[c]
		return ok
	case grid.DirNorth, grid.DirSouth:
		_, ok := a.vertical[c]
		return ok
	}
	return false
}
