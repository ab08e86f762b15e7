package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTiles computes walk masks for a rectangular area from raw collision
// data, mimicking what the asset extractor produces.
func buildTiles(t *testing.T, w, h int32, collide map[Coord]Collision) map[Coord]*Tile {
	t.Helper()

	at := func(c Coord) (Collision, bool) {
		if c.X < 0 || c.X >= w || c.Y < 0 || c.Y >= h {
			return Collision{}, false
		}
		col := collide[c]
		return col, true
	}

	tiles := make(map[Coord]*Tile)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			c := Coord{X: x, Y: y}
			col, _ := at(c)
			mask := ComputeWalkMask(col, func(d Direction) (Collision, bool) {
				return at(c.Step(d))
			})
			tiles[c] = &Tile{
				Coord:   c,
				Blocked: col.Center,
				Walk:    mask,
				Block:   ^mask,
			}
		}
	}
	return tiles
}

func TestOpenGridMasks(t *testing.T) {
	// 3x3 fully open grid: center has all 8 bits, a corner exactly 3.
	tiles := buildTiles(t, 3, 3, nil)

	center := tiles[Coord{X: 1, Y: 1}]
	require.NotNil(t, center)
	assert.Equal(t, DirAll, center.Walk)

	corner := tiles[Coord{X: 0, Y: 0}]
	require.NotNil(t, corner)
	assert.Equal(t, 3, popcount(corner.Walk))
	assert.Equal(t, DirNorth|DirEast|DirNorthEast, corner.Walk)
}

func TestCardinalBlockDropsDiagonal(t *testing.T) {
	// Wall between (0,0) and (0,1): no N bit, therefore no NE/NW from (0,0).
	collide := map[Coord]Collision{
		{X: 0, Y: 0}: {Edges: DirNorth},
	}
	tiles := buildTiles(t, 3, 3, collide)

	c := tiles[Coord{X: 0, Y: 0}]
	assert.Zero(t, c.Walk&DirNorth)
	assert.Zero(t, c.Walk&DirNorthEast)
	assert.NotZero(t, c.Walk&DirEast)
}

func TestCenterBlockedTile(t *testing.T) {
	collide := map[Coord]Collision{
		{X: 1, Y: 1}: {Center: true},
	}
	tiles := buildTiles(t, 3, 3, collide)

	assert.Zero(t, tiles[Coord{X: 1, Y: 1}].Walk)
	// Neighbors must not point into the blocked tile.
	assert.Zero(t, tiles[Coord{X: 0, Y: 1}].Walk&DirEast)
	assert.Zero(t, tiles[Coord{X: 1, Y: 0}].Walk&DirNorth)
	// Corner cutting around the block is forbidden too.
	assert.Zero(t, tiles[Coord{X: 0, Y: 0}].Walk&DirNorthEast)
}

func TestReconcileReciprocity(t *testing.T) {
	tiles := buildTiles(t, 4, 4, nil)

	// Break reciprocity by hand: (1,1) claims E but (2,1) denies W.
	tiles[Coord{X: 2, Y: 1}].Walk &^= DirWest

	cleared := Reconcile(tiles)
	assert.Greater(t, cleared, 0)

	for c, tile := range tiles {
		for _, d := range Cardinals {
			if tile.Walk&d == 0 {
				continue
			}
			n := tiles[c.Step(d)]
			require.NotNil(t, n, "bit %v on %v dangles", d, c)
			assert.NotZero(t, n.Walk&d.Opposite(),
				"reciprocity broken: %v -> %v", c, c.Step(d))
		}
	}
}

func TestReconcileDiagonalSoundness(t *testing.T) {
	tiles := buildTiles(t, 4, 4, nil)

	// Drop the N bit of (1,1); its NE and NW must be reconciled away.
	tiles[Coord{X: 1, Y: 1}].Walk &^= DirNorth

	Reconcile(tiles)

	for _, tile := range tiles {
		for _, d := range Diagonals {
			if tile.Walk&d == 0 {
				continue
			}
			c1, c2 := d.Components()
			assert.NotZero(t, tile.Walk&c1, "diagonal %v without cardinal %v", d, c1)
			assert.NotZero(t, tile.Walk&c2, "diagonal %v without cardinal %v", d, c2)
		}
	}
	assert.Zero(t, tiles[Coord{X: 1, Y: 1}].Walk&(DirNorthEast|DirNorthWest))
}

func TestReconcileBlockMaskComplement(t *testing.T) {
	tiles := buildTiles(t, 3, 3, nil)
	Reconcile(tiles)
	for _, tile := range tiles {
		assert.Equal(t, ^tile.Walk, tile.Block)
	}
}
