package snapshot

import (
	"encoding/hex"
	"time"

	"github.com/questmap/worldroute/internal/cluster"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// Snapshot is the immutable, fully indexed route bundle the query engine
// runs against. Built once, shared by reference; no field is mutated after
// Build (or gob decode) returns.
type Snapshot struct {
	grid     *grid.Grid
	edges    *teleport.Set
	registry *teleport.Registry
	graph    *cluster.Graph

	entranceAt   map[grid.Coord][]int32 // entrance indexes by coordinate
	entranceByID map[int64]int32
	abstractAdj  map[int64][]AbstractEdge
	teleportsAt  map[grid.Coord][]int32 // localized edge indexes by covered source tile
	globals      []int32

	// pointer views of teleportsAt/globals, built once so the query hot path
	// does not allocate per expansion
	teleportEdgesAt map[grid.Coord][]*teleport.Edge
	globalEdges     []*teleport.Edge

	minTeleportCost int32 // 0 when no teleport edges exist

	landmarks []grid.Coord
	distFrom  []map[grid.Coord]int32 // landmark -> tile, unrestricted graph
	distTo    []map[grid.Coord]int32 // tile -> landmark

	hash    [32]byte
	builtAt time.Time
}

// AbstractEdge is one outgoing abstraction-layer edge of an entrance, either
// an internal shortest path or a boundary crossing.
type AbstractEdge struct {
	To        int64 // entrance id
	Cost      int32
	Waypoints []grid.Coord
}

// Version identifies a snapshot for status reporting and artifact lookup.
type Version struct {
	Hash      string    `json:"hash"`
	BuiltAt   time.Time `json:"built_at"`
	Tiles     int       `json:"tiles"`
	Clusters  int       `json:"clusters"`
	Entrances int       `json:"entrances"`
	Teleports int       `json:"teleports"`
	Landmarks int       `json:"landmarks"`
}

// Grid returns the compiled tile set.
func (s *Snapshot) Grid() *grid.Grid { return s.grid }

// Registry returns the requirement registry used to compile profiles.
func (s *Snapshot) Registry() *teleport.Registry { return s.registry }

// Contains reports whether c is part of the compiled walkable set.
func (s *Snapshot) Contains(c grid.Coord) bool { return s.grid.Walkable(c) }

// EntrancesAt returns the entrances anchored at c, if any.
func (s *Snapshot) EntrancesAt(c grid.Coord) []cluster.Entrance {
	idx := s.entranceAt[c]
	if len(idx) == 0 {
		return nil
	}
	out := make([]cluster.Entrance, len(idx))
	for i, j := range idx {
		out[i] = s.graph.Entrances[j]
	}
	return out
}

// Entrance resolves an entrance by id.
func (s *Snapshot) Entrance(id int64) (cluster.Entrance, bool) {
	i, ok := s.entranceByID[id]
	if !ok {
		return cluster.Entrance{}, false
	}
	return s.graph.Entrances[i], true
}

// AbstractNeighbors returns the abstraction edges leaving entrance id.
func (s *Snapshot) AbstractNeighbors(id int64) []AbstractEdge { return s.abstractAdj[id] }

// TeleportsAt returns the localized teleport edges whose source area covers c.
// The returned slice is shared; callers must not mutate it.
func (s *Snapshot) TeleportsAt(c grid.Coord) []*teleport.Edge {
	return s.teleportEdgesAt[c]
}

// GlobalTeleports returns the edges usable from any tile. The returned slice
// is shared; callers must not mutate it.
func (s *Snapshot) GlobalTeleports() []*teleport.Edge {
	return s.globalEdges
}

// MinTeleportCost is the cheapest teleport edge cost, or 0 when the snapshot
// carries no teleports. The heuristic uses it as the cross-shortcut floor.
func (s *Snapshot) MinTeleportCost() int32 { return s.minTeleportCost }

// HasTeleports reports whether any usable teleport edge was compiled in.
func (s *Snapshot) HasTeleports() bool {
	return len(s.globals) > 0 || len(s.teleportsAt) > 0
}

// ALTBound returns a lower bound on the travel cost from a to b derived from
// the landmark tables. Distances were computed on the unrestricted graph, so
// the bound stays valid for any requirement-filtered subgraph. Returns 0
// when either endpoint is missing from a table.
func (s *Snapshot) ALTBound(a, b grid.Coord) int32 {
	var bound int32
	for i := range s.landmarks {
		// d(a,b) >= d(a,L) - d(b,L) and d(a,b) >= d(L,b) - d(L,a).
		aTo, ok1 := s.distTo[i][a]
		bTo, ok2 := s.distTo[i][b]
		if ok1 && ok2 && aTo-bTo > bound {
			bound = aTo - bTo
		}
		aFrom, ok1 := s.distFrom[i][a]
		bFrom, ok2 := s.distFrom[i][b]
		if ok1 && ok2 && bFrom-aFrom > bound {
			bound = bFrom - aFrom
		}
	}
	return bound
}

// Hash returns the blake2b-256 content hash.
func (s *Snapshot) Hash() [32]byte { return s.hash }

// Version returns the reporting view of this snapshot.
func (s *Snapshot) Version() Version {
	return Version{
		Hash:      hex.EncodeToString(s.hash[:]),
		BuiltAt:   s.builtAt,
		Tiles:     s.grid.Len(),
		Clusters:  len(s.graph.Clusters),
		Entrances: len(s.graph.Entrances),
		Teleports: len(s.edges.Edges),
		Landmarks: len(s.landmarks),
	}
}
