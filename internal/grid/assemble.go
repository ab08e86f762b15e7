package grid

import "log/slog"

// RawTile is one dataset row before mask derivation.
type RawTile struct {
	Collision Collision
	Terrain   bool
}

// Assemble derives walk masks for a raw collision map and reconciles them
// into a consistent tile set ready for NewGrid and extraction.
func Assemble(raw map[Coord]RawTile) []Tile {
	tiles := make(map[Coord]*Tile, len(raw))
	for c, r := range raw {
		mask := ComputeWalkMask(r.Collision, func(d Direction) (Collision, bool) {
			n, ok := raw[c.Step(d)]
			return n.Collision, ok
		})
		tiles[c] = &Tile{
			Coord:   c,
			Terrain: r.Terrain,
			Blocked: r.Collision.Center,
			Walk:    mask,
			Block:   ^mask,
		}
	}
	if cleared := Reconcile(tiles); cleared > 0 {
		slog.Info("tile masks reconciled", "tiles", len(tiles), "bits_cleared", cleared)
	}
	out := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, *t)
	}
	return out
}
