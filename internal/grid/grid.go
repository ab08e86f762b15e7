package grid

import "sort"

// Grid is an immutable set of tiles addressable by coordinate.
// Built once, never modified afterwards; safe for concurrent readers.
type Grid struct {
	tiles map[Coord]*Tile
	order []Coord // sorted, for deterministic iteration
}

// NewGrid builds a grid from tiles. Later duplicates win.
func NewGrid(tiles []Tile) *Grid {
	m := make(map[Coord]*Tile, len(tiles))
	for i := range tiles {
		t := tiles[i]
		m[t.Coord] = &t
	}
	return &Grid{tiles: m, order: sortedCoords(m)}
}

func sortedCoords(m map[Coord]*Tile) []Coord {
	order := make([]Coord, 0, len(m))
	for c := range m {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool { return CoordLess(order[i], order[j]) })
	return order
}

// CoordLess orders coordinates by (plane, y, x).
func CoordLess(a, b Coord) bool {
	if a.Plane != b.Plane {
		return a.Plane < b.Plane
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// At returns the tile at c, or nil if absent.
func (g *Grid) At(c Coord) *Tile {
	return g.tiles[c]
}

// Walkable reports whether a tile exists at c and can be stood on.
func (g *Grid) Walkable(c Coord) bool {
	t := g.tiles[c]
	return t != nil && t.Walkable()
}

// CanStep reports whether a single step from c in direction d is allowed:
// the mask bit is set and the target tile is walkable.
func (g *Grid) CanStep(c Coord, d Direction) bool {
	t := g.tiles[c]
	if t == nil || t.Walk&d == 0 {
		return false
	}
	return g.Walkable(c.Step(d))
}

// Len returns the tile count.
func (g *Grid) Len() int {
	return len(g.tiles)
}

// Coords returns all coordinates in deterministic (plane, y, x) order.
// The returned slice is shared; callers must not mutate it.
func (g *Grid) Coords() []Coord {
	return g.order
}

// Chunks returns the distinct chunk coordinates present, sorted.
func (g *Grid) Chunks() []ChunkCoord {
	seen := make(map[ChunkCoord]struct{})
	var out []ChunkCoord
	for _, c := range g.order {
		cc := ChunkOf(c)
		if _, ok := seen[cc]; ok {
			continue
		}
		seen[cc] = struct{}{}
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Plane != b.Plane {
			return a.Plane < b.Plane
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return out
}
