package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

func openGrid(coords ...grid.Coord) *grid.Grid {
	present := make(map[grid.Coord]struct{}, len(coords))
	for _, c := range coords {
		present[c] = struct{}{}
	}
	tiles := make([]grid.Tile, 0, len(coords))
	for _, c := range coords {
		mask := grid.ComputeWalkMask(grid.Collision{}, func(d grid.Direction) (grid.Collision, bool) {
			_, ok := present[c.Step(d)]
			return grid.Collision{}, ok
		})
		tiles = append(tiles, grid.Tile{Coord: c, Walk: mask, Block: ^mask})
	}
	return grid.NewGrid(tiles)
}

func row(x0, x1, y int32) []grid.Coord {
	var out []grid.Coord
	for x := x0; x <= x1; x++ {
		out = append(out, grid.Coord{X: x, Y: y})
	}
	return out
}

// fixture: a strip crossing a chunk boundary plus a detached island, bridged
// by a localized teleport one way and a global teleport back.
func buildFixture(t *testing.T) *Snapshot {
	t.Helper()
	coords := append(row(60, 67, 0), row(100, 103, 0)...)
	g := openGrid(coords...)

	src := teleport.PointArea(grid.Coord{X: 60, Y: 0})
	dest := teleport.PointArea(grid.Coord{X: 100, Y: 0})
	back := teleport.PointArea(grid.Coord{X: 65, Y: 0})
	set := &teleport.Set{Edges: []teleport.Edge{
		{Source: &src, Dest: dest, Cost: 2048, Kind: teleport.KindObject},
		{Dest: back, Cost: 5000, Kind: teleport.KindLodestone},
	}}
	reg, err := teleport.NewRegistry([]teleport.Predicate{
		{ID: 1, Key: "quest_state", Comparison: ">=", Value: 3},
	})
	require.NoError(t, err)

	s, err := Build(context.Background(), g, set, reg, Options{Landmarks: 16, Workers: 2})
	require.NoError(t, err)
	return s
}

func TestBuildCountsAndIndexes(t *testing.T) {
	s := buildFixture(t)

	v := s.Version()
	assert.Equal(t, 12, v.Tiles)
	assert.Equal(t, 3, v.Clusters)
	assert.Equal(t, 2, v.Entrances)
	assert.Equal(t, 2, v.Teleports)
	assert.NotEmpty(t, v.Hash)

	// Entrances pair across the 63/64 boundary in both directions.
	ents := s.EntrancesAt(grid.Coord{X: 63, Y: 0})
	require.Len(t, ents, 1)
	neighbors := s.AbstractNeighbors(ents[0].ID)
	require.Len(t, neighbors, 1)
	assert.Equal(t, int32(grid.StraightCost), neighbors[0].Cost)
	assert.Equal(t, []grid.Coord{{X: 63, Y: 0}, {X: 64, Y: 0}}, neighbors[0].Waypoints)

	// Localized teleport indexed under its source tile only.
	require.Len(t, s.TeleportsAt(grid.Coord{X: 60, Y: 0}), 1)
	assert.Empty(t, s.TeleportsAt(grid.Coord{X: 61, Y: 0}))
	require.Len(t, s.GlobalTeleports(), 1)

	assert.True(t, s.HasTeleports())
	assert.Equal(t, int32(2048), s.MinTeleportCost())
}

func TestTeleportLookupsReturnSharedSlices(t *testing.T) {
	s := buildFixture(t)

	// The query engine calls these once per popped node; repeated calls must
	// hand back the precomputed slices instead of allocating.
	a := s.TeleportsAt(grid.Coord{X: 60, Y: 0})
	b := s.TeleportsAt(grid.Coord{X: 60, Y: 0})
	require.NotEmpty(t, a)
	assert.True(t, &a[0] == &b[0], "TeleportsAt must reuse its backing array")

	ga := s.GlobalTeleports()
	gb := s.GlobalTeleports()
	require.NotEmpty(t, ga)
	assert.True(t, &ga[0] == &gb[0], "GlobalTeleports must reuse its backing array")
}

func TestBuildHashDeterministic(t *testing.T) {
	a := buildFixture(t)
	b := buildFixture(t)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := buildFixture(t)

	blob, err := s.Encode()
	require.NoError(t, err)

	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, s.Hash(), got.Hash())
	assert.Equal(t, s.Version().Tiles, got.Version().Tiles)

	// Rebuilt indexes answer the same lookups.
	assert.Len(t, got.TeleportsAt(grid.Coord{X: 60, Y: 0}), 1)
	assert.Len(t, got.GlobalTeleports(), 1)
	a, b := grid.Coord{X: 60, Y: 0}, grid.Coord{X: 103, Y: 0}
	assert.Equal(t, s.ALTBound(a, b), got.ALTBound(a, b))
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	s := buildFixture(t)
	blob, err := s.Encode()
	require.NoError(t, err)

	_, err = Decode(blob[:len(blob)-16])
	assert.Error(t, err)
}

func TestBackwardMatchesForward(t *testing.T) {
	s := buildFixture(t)
	tg := newTileGraph(s.grid, s.edges, s.teleportsAt, s.globals)

	coords := s.grid.Coords()
	for _, src := range coords {
		fwd := tg.forward(src)
		for _, dst := range coords {
			bwd := tg.backward(dst)
			f, fok := fwd[dst]
			b, bok := bwd[src]
			require.Equal(t, fok, bok, "reachability %v -> %v", src, dst)
			if fok {
				assert.Equal(t, f, b, "distance %v -> %v", src, dst)
			}
		}
	}
}

func TestALTBoundAdmissible(t *testing.T) {
	s := buildFixture(t)
	tg := newTileGraph(s.grid, s.edges, s.teleportsAt, s.globals)

	coords := s.grid.Coords()
	for _, a := range coords {
		fwd := tg.forward(a)
		for _, b := range coords {
			d, ok := fwd[b]
			if !ok {
				continue
			}
			assert.LessOrEqual(t, s.ALTBound(a, b), d, "%v -> %v", a, b)
		}
	}
}

func TestGlobalTeleportBackwardClamp(t *testing.T) {
	s := buildFixture(t)
	tg := newTileGraph(s.grid, s.edges, s.teleportsAt, s.globals)

	// The only way from the island back to the strip is the global teleport
	// landing on (65,0).
	bwd := tg.backward(grid.Coord{X: 65, Y: 0})
	d, ok := bwd[grid.Coord{X: 103, Y: 0}]
	require.True(t, ok)
	assert.Equal(t, int32(5000), d)

	// Two strip tiles still prefer walking over teleporting.
	d, ok = bwd[grid.Coord{X: 63, Y: 0}]
	require.True(t, ok)
	assert.Equal(t, int32(2*grid.StraightCost), d)
}

func TestLandmarkSelectionCoversSmallGrid(t *testing.T) {
	s := buildFixture(t)
	// Fewer tiles than the landmark floor: every tile becomes a landmark.
	assert.Len(t, s.landmarks, s.grid.Len())
	seen := make(map[grid.Coord]struct{})
	for _, l := range s.landmarks {
		seen[l] = struct{}{}
	}
	assert.Len(t, seen, len(s.landmarks))
}

func TestHandlePublish(t *testing.T) {
	h := NewHandle(nil)
	assert.Nil(t, h.Acquire())
	assert.Zero(t, h.Generation())

	s := buildFixture(t)
	gen := h.Swap(s)
	assert.Equal(t, uint64(1), gen)
	assert.Same(t, s, h.Acquire())

	h.Swap(s)
	assert.Equal(t, uint64(2), h.Generation())
}
