package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/questmap/worldroute/internal/cluster"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// Options tunes the snapshot build.
type Options struct {
	Landmarks int // clamped to [MinLandmarks, MaxLandmarks]
	Workers   int // abstraction build parallelism
}

// Build compiles a sanitized grid, flattened teleport edges and the
// requirement registry into an immutable snapshot. Stages run in order:
// abstraction graph, teleport indexes, landmark tables, content hash. Each
// stage logs its counts.
func Build(ctx context.Context, g *grid.Grid, set *teleport.Set, reg *teleport.Registry, opts Options) (*Snapshot, error) {
	if g.Len() == 0 {
		return nil, fmt.Errorf("build snapshot: empty grid")
	}
	started := time.Now()

	graph, err := cluster.Build(ctx, g, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	s := &Snapshot{
		grid:     g,
		edges:    set,
		registry: reg,
		graph:    graph,
		builtAt:  started.UTC(),
	}
	s.buildIndexes()

	seed := s.landmarkSeed()
	tg := newTileGraph(g, set, s.teleportsAt, s.globals)
	s.landmarks, s.distFrom, s.distTo = selectLandmarks(tg, seed, opts.Landmarks)
	slog.Info("landmark tables computed", "landmarks", len(s.landmarks), "seed", seed)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	s.hash = computeHash(s)

	v := s.Version()
	slog.Info("snapshot built",
		"hash", v.Hash,
		"tiles", v.Tiles,
		"clusters", v.Clusters,
		"entrances", v.Entrances,
		"teleports", v.Teleports,
		"landmarks", v.Landmarks,
		"took", time.Since(started))
	return s, nil
}

// buildIndexes derives the lookup structures from the primary data. Also run
// after gob decode, so it must stay a pure function of grid/edges/graph.
func (s *Snapshot) buildIndexes() {
	s.entranceAt = make(map[grid.Coord][]int32)
	s.entranceByID = make(map[int64]int32, len(s.graph.Entrances))
	for i, e := range s.graph.Entrances {
		s.entranceAt[e.Coord] = append(s.entranceAt[e.Coord], int32(i))
		s.entranceByID[e.ID] = int32(i)
	}

	s.abstractAdj = make(map[int64][]AbstractEdge)
	for _, e := range s.graph.Intra {
		s.abstractAdj[e.From] = append(s.abstractAdj[e.From], AbstractEdge{
			To: e.To, Cost: e.Cost, Waypoints: e.Waypoints,
		})
	}
	for _, e := range s.graph.Inter {
		from, _ := s.Entrance(e.From)
		to, _ := s.Entrance(e.To)
		s.abstractAdj[e.From] = append(s.abstractAdj[e.From], AbstractEdge{
			To: e.To, Cost: e.Cost, Waypoints: []grid.Coord{from.Coord, to.Coord},
		})
	}

	s.teleportsAt = make(map[grid.Coord][]int32)
	s.globals = nil
	s.minTeleportCost = 0
	haveMin := false
	skipped := 0
	for i := range s.edges.Edges {
		e := &s.edges.Edges[i]
		if !s.grid.Walkable(e.Dest.Anchor()) {
			skipped++
			continue
		}
		usable := false
		if e.Global() {
			s.globals = append(s.globals, int32(i))
			usable = true
		} else {
			for _, c := range e.Source.Tiles() {
				if !s.grid.Walkable(c) {
					continue
				}
				s.teleportsAt[c] = append(s.teleportsAt[c], int32(i))
				usable = true
			}
			if !usable {
				skipped++
			}
		}
		if usable && (!haveMin || e.Cost < s.minTeleportCost) {
			s.minTeleportCost = e.Cost
			haveMin = true
		}
	}
	if skipped > 0 {
		slog.Warn("teleport edges outside compiled tiles skipped", "skipped", skipped)
	}

	s.teleportEdgesAt = make(map[grid.Coord][]*teleport.Edge, len(s.teleportsAt))
	for c, idx := range s.teleportsAt {
		ptrs := make([]*teleport.Edge, len(idx))
		for i, j := range idx {
			ptrs[i] = &s.edges.Edges[j]
		}
		s.teleportEdgesAt[c] = ptrs
	}
	s.globalEdges = make([]*teleport.Edge, len(s.globals))
	for i, j := range s.globals {
		s.globalEdges[i] = &s.edges.Edges[j]
	}
}

// landmarkSeed picks the busiest entrance coordinate, falling back to the
// first compiled tile for entrance-free worlds.
func (s *Snapshot) landmarkSeed() grid.Coord {
	best := grid.Coord{}
	degree := -1
	for _, e := range s.graph.Entrances {
		d := len(s.abstractAdj[e.ID])
		if d > degree || (d == degree && grid.CoordLess(e.Coord, best)) {
			best, degree = e.Coord, d
		}
	}
	if degree >= 0 {
		return best
	}
	return s.grid.Coords()[0]
}
