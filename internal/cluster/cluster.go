package cluster

import (
	"sort"

	"github.com/questmap/worldroute/internal/grid"
)

// ID is a deterministic cluster identifier packing plane, chunk coordinate
// and the component's local index, so rebuilds over the same tiles always
// produce the same ids.
type ID int64

// MakeID packs (plane, chunkX, chunkZ, localIndex) into an ID.
func MakeID(plane, cx, cz int32, local int) ID {
	p := (int64(plane) & 0xF) << 60
	x := (int64(cx) & 0xFFFFFF) << 36
	z := (int64(cz) & 0xFFFFFF) << 12
	return ID(p | x | z | int64(local)&0xFFF)
}

// Cluster is one connected component of walkable tiles within a chunk and
// plane. Immutable once built.
type Cluster struct {
	ID    ID
	Chunk grid.ChunkCoord
	Tiles []grid.Coord // sorted by (plane, y, x)
}

// Entrance is a border tile of a cluster facing an adjacent chunk. A tile
// bordering in two directions yields two entrances.
type Entrance struct {
	ID      int64
	Cluster ID
	Coord   grid.Coord
	Dir     grid.Direction // cardinal facing direction
}

// InterEdge links two entrances of adjacent clusters across a shared
// boundary. Cost is one straight crossing step.
type InterEdge struct {
	From, To int64
	Cost     int32
}

// IntraEdge links two entrances of the same cluster with the shortest
// internal walking cost and a collinear-compressed waypoint path.
type IntraEdge struct {
	Cluster   ID
	From, To  int64
	Cost      int32
	Waypoints []grid.Coord
}

// Graph is the assembled abstraction layer, merged deterministically from
// per-chunk partitions.
type Graph struct {
	Clusters  []Cluster
	Entrances []Entrance
	Inter     []InterEdge
	Intra     []IntraEdge
}

// floodChunk partitions the walkable tiles of one (chunk, plane) into
// connected components. Only cardinal adjacency with a passable edge merges
// tiles; diagonal-only contact does not (a unit-radius agent cannot squeeze
// through such a corner).
func floodChunk(g *grid.Grid, cc grid.ChunkCoord) []Cluster {
	x0, y0, x1, y1 := cc.Bounds()

	var seeds []grid.Coord
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := grid.Coord{X: x, Y: y, Plane: cc.Plane}
			if g.Walkable(c) {
				seeds = append(seeds, c)
			}
		}
	}
	if len(seeds) == 0 {
		return nil
	}
	sort.Slice(seeds, func(i, j int) bool { return grid.CoordLess(seeds[i], seeds[j]) })

	inChunk := func(c grid.Coord) bool {
		return c.X >= x0 && c.X <= x1 && c.Y >= y0 && c.Y <= y1
	}

	visited := make(map[grid.Coord]struct{}, len(seeds))
	var components [][]grid.Coord

	for _, start := range seeds {
		if _, ok := visited[start]; ok {
			continue
		}
		comp := []grid.Coord{}
		queue := []grid.Coord{start}
		visited[start] = struct{}{}

		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			comp = append(comp, c)

			for _, d := range grid.Cardinals {
				n := c.Step(d)
				if !inChunk(n) {
					continue
				}
				if _, ok := visited[n]; ok {
					continue
				}
				if !g.CanStep(c, d) {
					continue
				}
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}

		sort.Slice(comp, func(i, j int) bool { return grid.CoordLess(comp[i], comp[j]) })
		components = append(components, comp)
	}

	// Seeds are visited in sorted order, so components are already ordered
	// by their smallest tile; local indices are stable.
	clusters := make([]Cluster, len(components))
	for i, comp := range components {
		clusters[i] = Cluster{
			ID:    MakeID(cc.Plane, cc.X, cc.Z, i),
			Chunk: cc,
			Tiles: comp,
		}
	}
	return clusters
}
