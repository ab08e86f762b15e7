package cluster

import (
	"sort"

	"github.com/questmap/worldroute/internal/grid"
)

// entranceRow is a discovered entrance before global id assignment.
type entranceRow struct {
	Cluster ID
	Coord   grid.Coord
	Dir     grid.Direction
}

// discoverEntrances scans a cluster's tiles lying on the chunk border and
// emits one row per (cluster, coordinate, direction) with a passable edge
// crossing into the adjacent chunk.
func discoverEntrances(g *grid.Grid, cl *Cluster) []entranceRow {
	x0, y0, x1, y1 := cl.Chunk.Bounds()

	var rows []entranceRow
	for _, c := range cl.Tiles {
		var facing []grid.Direction
		if c.Y == y1 {
			facing = append(facing, grid.DirNorth)
		}
		if c.X == x1 {
			facing = append(facing, grid.DirEast)
		}
		if c.Y == y0 {
			facing = append(facing, grid.DirSouth)
		}
		if c.X == x0 {
			facing = append(facing, grid.DirWest)
		}
		for _, d := range facing {
			if !g.CanStep(c, d) {
				continue
			}
			rows = append(rows, entranceRow{Cluster: cl.ID, Coord: c, Dir: d})
		}
	}
	return rows
}

// pairInterEdges emits one directed InterEdge per entrance whose opposing
// entrance exists at the adjacent coordinate with the opposite direction.
// Matched pairs yield both directions naturally; unmatched entrances are
// dropped as non-edges, not errors.
func pairInterEdges(entrances []Entrance) []InterEdge {
	type key struct {
		c grid.Coord
		d grid.Direction
	}
	index := make(map[key]int64, len(entrances))
	for _, e := range entrances {
		index[key{e.Coord, e.Dir}] = e.ID
	}

	var edges []InterEdge
	for _, e := range entrances {
		partner, ok := index[key{e.Coord.Step(e.Dir), e.Dir.Opposite()}]
		if !ok {
			continue
		}
		edges = append(edges, InterEdge{From: e.ID, To: partner, Cost: grid.StraightCost})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
