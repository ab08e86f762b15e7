package grid

// Collision is the raw per-tile collision report from the asset extractor.
// Center means the whole tile is blocked; Edges holds the directions whose
// shared edge this tile refuses to cross.
type Collision struct {
	Center bool
	Edges  Direction
}

// NeighborFn resolves the raw collision data of the neighbor in direction d.
// The second result is false when no tile exists there.
type NeighborFn func(d Direction) (Collision, bool)

// ComputeWalkMask derives a tile's walk mask from its 3x3 neighborhood.
// A cardinal bit is set iff neither the tile nor that neighbor reports a
// center block or an opposing edge block. A diagonal bit is set iff both of
// its adjacent cardinal bits are set and the diagonal target itself is open
// (unit-radius agent, no corner cutting).
// Pure function; no side effects.
func ComputeWalkMask(center Collision, neighbor NeighborFn) Direction {
	if center.Center {
		return 0
	}

	var mask Direction
	for _, d := range Cardinals {
		n, ok := neighbor(d)
		if !ok || n.Center {
			continue
		}
		if center.Edges&d != 0 || n.Edges&d.Opposite() != 0 {
			continue
		}
		mask |= d
	}

	for _, d := range Diagonals {
		c1, c2 := d.Components()
		if mask&c1 == 0 || mask&c2 == 0 {
			continue
		}
		n, ok := neighbor(d)
		if !ok || n.Center {
			continue
		}
		mask |= d
	}

	return mask
}

// Reconcile enforces the mask invariants across a tile set in place:
//   - cardinal reciprocity: a bit on A toward B requires the reciprocal bit
//     on a walkable B;
//   - diagonal soundness: a diagonal requires both contributing cardinals on
//     the origin and the matching crossing bits on both orthogonal tiles
//     forming the corner.
//
// Block masks are refreshed to the complement of the walk masks. Returns the
// number of bits cleared.
func Reconcile(tiles map[Coord]*Tile) int {
	cleared := 0

	walkable := func(c Coord) *Tile {
		t := tiles[c]
		if t == nil || !t.Walkable() {
			return nil
		}
		return t
	}

	// Cardinal pass. Clearing here is symmetric: a bit is dropped only when
	// the partner already lacks the reciprocal, so one pass is stable.
	for c, t := range tiles {
		if t.Blocked {
			if t.Walk != 0 {
				cleared += popcount(t.Walk)
				t.Walk = 0
			}
			continue
		}
		for _, d := range Cardinals {
			if t.Walk&d == 0 {
				continue
			}
			n := walkable(c.Step(d))
			if n == nil || n.Walk&d.Opposite() == 0 {
				t.Walk &^= d
				cleared++
			}
		}
	}

	// Diagonal pass over stabilized cardinal bits.
	for c, t := range tiles {
		for _, d := range Diagonals {
			if t.Walk&d == 0 {
				continue
			}
			c1, c2 := d.Components()
			if !diagonalSound(tiles, c, t, d, c1, c2) {
				t.Walk &^= d
				cleared++
			}
		}
	}

	for _, t := range tiles {
		t.Block = ^t.Walk
	}

	return cleared
}

func diagonalSound(tiles map[Coord]*Tile, c Coord, t *Tile, d, c1, c2 Direction) bool {
	if t.Walk&c1 == 0 || t.Walk&c2 == 0 {
		return false
	}
	target := tiles[c.Step(d)]
	if target == nil || !target.Walkable() {
		return false
	}
	// Both tiles forming the corner must permit the crossing step.
	n1 := tiles[c.Step(c1)]
	n2 := tiles[c.Step(c2)]
	if n1 == nil || n1.Walk&c2 == 0 {
		return false
	}
	if n2 == nil || n2.Walk&c1 == 0 {
		return false
	}
	return true
}

func popcount(d Direction) int {
	n := 0
	for d != 0 {
		d &= d - 1
		n++
	}
	return n
}
