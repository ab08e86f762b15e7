package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGrid(t *testing.T, w, h int32, collide map[Coord]Collision) *Grid {
	t.Helper()
	tiles := buildTiles(t, w, h, collide)
	Reconcile(tiles)
	flat := make([]Tile, 0, len(tiles))
	for _, tile := range tiles {
		flat = append(flat, *tile)
	}
	return NewGrid(flat)
}

func TestExtractWalledOffTile(t *testing.T) {
	// 5x5 grid with (2,2) fully walled off from the BFS seed (0,0).
	collide := map[Coord]Collision{
		{X: 2, Y: 2}: {Edges: DirAll},
	}
	g := openGrid(t, 5, 5, collide)

	out, stats, err := Extract(Coord{X: 0, Y: 0}, g, nil)
	require.NoError(t, err)

	center := Coord{X: 2, Y: 2}
	assert.Nil(t, out.At(center), "walled-off tile must be dropped")
	assert.Equal(t, 1, stats.Dropped)

	// Would-be neighbors no longer reference it.
	for d := Direction(1); d != 0; d <<= 1 {
		n := out.At(center.Step(d))
		require.NotNil(t, n)
		assert.Zero(t, n.Walk&d.Opposite(),
			"neighbor %v still points at dropped tile", n.Coord)
	}
}

func TestExtractClosure(t *testing.T) {
	collide := map[Coord]Collision{
		{X: 1, Y: 2}: {Center: true},
		{X: 3, Y: 1}: {Center: true},
	}
	g := openGrid(t, 5, 5, collide)

	out, _, err := Extract(Coord{X: 0, Y: 0}, g, nil)
	require.NoError(t, err)

	for _, c := range out.Coords() {
		tile := out.At(c)
		for d := Direction(1); d != 0; d <<= 1 {
			if tile.Walk&d == 0 {
				continue
			}
			assert.NotNil(t, out.At(c.Step(d)),
				"mask bit %v on %v references a dropped tile", d, c)
		}
	}
}

func TestExtractTeleportHop(t *testing.T) {
	// Two open islands; a one-way hop bridges them.
	tiles := buildTiles(t, 2, 2, nil)
	far := buildTiles(t, 2, 2, nil)
	flat := make([]Tile, 0, 8)
	for _, tile := range tiles {
		flat = append(flat, *tile)
	}
	for _, tile := range far {
		tt := *tile
		tt.Coord.X += 100
		tt.Coord.Y += 100
		flat = append(flat, tt)
	}
	g := NewGrid(flat)

	hops := []Hop{{
		From: []Coord{{X: 0, Y: 0}},
		To:   []Coord{{X: 100, Y: 100}},
	}}

	out, _, err := Extract(Coord{X: 0, Y: 0}, g, hops)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Len(), "hop destination island must be reached")

	// Without the hop the far island is dropped.
	out, _, err = Extract(Coord{X: 0, Y: 0}, g, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
}

func TestExtractGlobalHopReachesIsland(t *testing.T) {
	tiles := buildTiles(t, 2, 2, nil)
	flat := make([]Tile, 0, 5)
	for _, tile := range tiles {
		flat = append(flat, *tile)
	}
	island := Coord{X: 200, Y: 200, Plane: 1}
	flat = append(flat, Tile{Coord: island, Walk: DirNorth}) // bit dangles, sanitized away

	g := NewGrid(flat)
	hops := []Hop{{From: nil, To: []Coord{island}}}

	out, stats, err := Extract(Coord{X: 0, Y: 0}, g, hops)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Len())
	assert.Equal(t, 1, stats.BitsCleared)
	assert.Zero(t, out.At(island).Walk)
}

func TestExtractTeleportOnlyPocketRetained(t *testing.T) {
	// A lone tile with no neighbors has an empty walk mask but is still
	// standable; a hop landing on it must keep it in the compiled set.
	tiles := buildTiles(t, 2, 2, nil)
	flat := make([]Tile, 0, 5)
	for _, tile := range tiles {
		flat = append(flat, *tile)
	}
	pocket := Coord{X: 50, Y: 50}
	flat = append(flat, Tile{Coord: pocket})
	g := NewGrid(flat)

	hops := []Hop{{From: []Coord{{X: 0, Y: 0}}, To: []Coord{pocket}}}
	out, stats, err := Extract(Coord{X: 0, Y: 0}, g, hops)
	require.NoError(t, err)

	require.NotNil(t, out.At(pocket), "teleport-only pocket must be retained")
	assert.Zero(t, out.At(pocket).Walk)
	assert.Equal(t, 5, stats.Visited)
	assert.Zero(t, stats.Dropped)

	// Without the hop the pocket is unreachable and dropped.
	out, stats, err = Extract(Coord{X: 0, Y: 0}, g, nil)
	require.NoError(t, err)
	assert.Nil(t, out.At(pocket))
	assert.Equal(t, 1, stats.Dropped)
}

func TestExtractStartErrors(t *testing.T) {
	g := openGrid(t, 2, 2, nil)

	_, _, err := Extract(Coord{X: 50, Y: 50}, g, nil)
	assert.ErrorContains(t, err, "does not exist")

	blocked := NewGrid([]Tile{{Coord: Coord{X: 0, Y: 0}, Blocked: true}})
	_, _, err = Extract(Coord{X: 0, Y: 0}, blocked, nil)
	assert.ErrorContains(t, err, "blocked")
}
