package teleport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questmap/worldroute/internal/grid"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Predicate{
		{ID: 1, Key: "quest_state", Comparison: ">=", Value: 3},
		{ID: 2, Key: "magic_level", Comparison: ">=", Value: 20},
	})
	require.NoError(t, err)
	return reg
}

func TestFlattenChainCostAndDest(t *testing.T) {
	reg := testRegistry(t)
	src := PointArea(grid.Coord{X: 10, Y: 10})
	dest := PointArea(grid.Coord{X: 100, Y: 100})

	// door(cost=1) -> lodestone(cost=5, dest=(100,100,0))
	nodes := []Node{
		{Ref: NodeRef{KindDoor, 1}, Source: &src, Cost: 1,
			Next: &NodeRef{KindLodestone, 7}, Requirement: 1},
		{Ref: NodeRef{KindLodestone, 7}, Dest: &dest, Cost: 5, Requirement: 2},
	}

	set, stats := Flatten(nodes, reg)
	require.Equal(t, 1, stats.Edges)
	require.Len(t, set.Edges, 1)

	e := set.Edges[0]
	assert.Equal(t, int32(6), e.Cost)
	assert.Equal(t, dest, e.Dest)
	assert.Equal(t, KindDoor, e.Kind)
	require.Len(t, e.Steps, 2)

	// Requirement is the AND of both steps: both bits must be satisfied.
	bit1, _ := reg.Bit(1)
	bit2, _ := reg.Bit(2)
	assert.Equal(t, bit1|bit2, e.Requirements)
	assert.False(t, e.Eligible(bit1))
	assert.True(t, e.Eligible(bit1|bit2))
}

func TestFlattenCycleRejected(t *testing.T) {
	reg := testRegistry(t)
	src := PointArea(grid.Coord{X: 1, Y: 1})

	// Two nodes whose next fields reference each other. Neither is a head,
	// but a third node entering the loop exercises cycle detection too.
	nodes := []Node{
		{Ref: NodeRef{KindObject, 1}, Source: &src, Cost: 1, Next: &NodeRef{KindObject, 2}},
		{Ref: NodeRef{KindObject, 2}, Cost: 1, Next: &NodeRef{KindObject, 1}},
	}
	set, stats := Flatten(nodes, reg)
	assert.Empty(t, set.Edges)
	assert.Zero(t, stats.Edges)

	entry := Node{Ref: NodeRef{KindNPC, 9}, Source: &src, Cost: 2, Next: &NodeRef{KindObject, 1}}
	set, stats = Flatten(append(nodes, entry), reg)
	assert.Empty(t, set.Edges)
	assert.Equal(t, 1, stats.Cycles)
}

func TestFlattenDoorBidirectional(t *testing.T) {
	reg := testRegistry(t)
	inside := PointArea(grid.Coord{X: 5, Y: 5})
	outside := PointArea(grid.Coord{X: 5, Y: 6})

	nodes := []Node{
		{Ref: NodeRef{KindDoor, 3}, Source: &inside, Dest: &outside, Cost: 1},
	}
	set, _ := Flatten(nodes, reg)
	require.Len(t, set.Edges, 2)
	assert.Equal(t, outside, set.Edges[0].Dest)
	assert.Equal(t, inside, set.Edges[1].Dest)
	assert.Equal(t, outside, *set.Edges[1].Source)
}

func TestFlattenGlobalClassification(t *testing.T) {
	reg := testRegistry(t)
	dest := PointArea(grid.Coord{X: 50, Y: 50})
	src := PointArea(grid.Coord{X: 1, Y: 1})

	nodes := []Node{
		{Ref: NodeRef{KindLodestone, 1}, Dest: &dest, Cost: 10}, // no source: global
		{Ref: NodeRef{KindObject, 2}, Source: &src, Dest: &dest, Cost: 3},
	}
	set, _ := Flatten(nodes, reg)
	require.Len(t, set.Edges, 2)

	globals := set.Globals()
	require.Len(t, globals, 1)
	assert.True(t, set.Edges[globals[0]].Global())
	assert.Equal(t, KindLodestone, set.Edges[globals[0]].Kind)
}

func TestFlattenMissingDestinationDropped(t *testing.T) {
	reg := testRegistry(t)
	src := PointArea(grid.Coord{X: 1, Y: 1})

	nodes := []Node{
		{Ref: NodeRef{KindItem, 1}, Source: &src, Cost: 4}, // terminal, no dest
	}
	set, stats := Flatten(nodes, reg)
	assert.Empty(t, set.Edges)
	assert.Equal(t, 1, stats.NoDest)
}

func TestFlattenUnknownRequirementDropped(t *testing.T) {
	reg := testRegistry(t)
	src := PointArea(grid.Coord{X: 1, Y: 1})
	dest := PointArea(grid.Coord{X: 2, Y: 2})

	nodes := []Node{
		{Ref: NodeRef{KindNPC, 1}, Source: &src, Dest: &dest, Cost: 1, Requirement: 99},
	}
	set, stats := Flatten(nodes, reg)
	assert.Empty(t, set.Edges)
	assert.Equal(t, 1, stats.BadReqs)
}

func TestCompileProfile(t *testing.T) {
	reg := testRegistry(t)

	mask := reg.CompileProfile(map[string]int64{"quest_state": 5})
	bit1, _ := reg.Bit(1)
	assert.Equal(t, bit1, mask)

	mask = reg.CompileProfile(map[string]int64{"quest_state": 2, "magic_level": 20})
	bit2, _ := reg.Bit(2)
	assert.Equal(t, bit2, mask)

	assert.Zero(t, reg.CompileProfile(nil))
}

func TestRegistryLimits(t *testing.T) {
	preds := make([]Predicate, MaxPredicates+1)
	for i := range preds {
		preds[i] = Predicate{ID: int64(i + 1), Key: "k", Comparison: "=", Value: 1}
	}
	_, err := NewRegistry(preds)
	assert.Error(t, err)

	_, err = NewRegistry([]Predicate{{ID: 1}, {ID: 1}})
	assert.Error(t, err)
}

func TestMalformedComparisonUnsatisfied(t *testing.T) {
	reg, err := NewRegistry([]Predicate{{ID: 1, Key: "k", Comparison: "~", Value: 1}})
	require.NoError(t, err)
	assert.Zero(t, reg.CompileProfile(map[string]int64{"k": 1}))
}
