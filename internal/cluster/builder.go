package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/questmap/worldroute/internal/grid"
)

// Build partitions the grid into clusters, discovers entrances, pairs
// inter-cluster edges and computes intra-cluster shortest paths. Chunk
// partitions and per-cluster searches run on up to workers goroutines;
// results are merged in deterministic order, so two builds over the same
// grid produce identical graphs.
func Build(ctx context.Context, g *grid.Grid, workers int) (*Graph, error) {
	if workers < 1 {
		workers = 1
	}
	started := time.Now()
	chunks := g.Chunks()

	type partition struct {
		clusters []Cluster
		rows     []entranceRow
	}
	parts := make([]partition, len(chunks))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, cc := range chunks {
		i, cc := i, cc
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			clusters := floodChunk(g, cc)
			var rows []entranceRow
			for j := range clusters {
				rows = append(rows, discoverEntrances(g, &clusters[j])...)
			}
			parts[i] = partition{clusters: clusters, rows: rows}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("partition chunks: %w", err)
	}

	graph := &Graph{}
	var rows []entranceRow
	for _, p := range parts {
		graph.Clusters = append(graph.Clusters, p.clusters...)
		rows = append(rows, p.rows...)
	}

	// Entrance ids are assigned after a global sort, so they do not depend
	// on which worker finished first.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cluster != rows[j].Cluster {
			return rows[i].Cluster < rows[j].Cluster
		}
		if rows[i].Coord != rows[j].Coord {
			return grid.CoordLess(rows[i].Coord, rows[j].Coord)
		}
		return rows[i].Dir < rows[j].Dir
	})
	graph.Entrances = make([]Entrance, len(rows))
	for i, r := range rows {
		graph.Entrances[i] = Entrance{ID: int64(i + 1), Cluster: r.Cluster, Coord: r.Coord, Dir: r.Dir}
	}

	graph.Inter = pairInterEdges(graph.Entrances)

	intra, err := buildIntraEdges(ctx, g, graph, workers)
	if err != nil {
		return nil, err
	}
	graph.Intra = intra
	trimmed := trimIntraEdges(graph)

	slog.Info("abstraction graph built",
		"chunks", len(chunks),
		"clusters", len(graph.Clusters),
		"entrances", len(graph.Entrances),
		"inter_edges", len(graph.Inter),
		"intra_edges", len(graph.Intra),
		"intra_trimmed", trimmed,
		"took", time.Since(started))
	return graph, nil
}

// buildIntraEdges runs the internal shortest-path searches for every cluster
// with at least two entrances. Each unordered entrance pair is searched once;
// the reverse edge reuses the cost with reversed waypoints.
func buildIntraEdges(ctx context.Context, g *grid.Grid, graph *Graph, workers int) ([]IntraEdge, error) {
	byCluster := make(map[ID][]Entrance)
	for _, e := range graph.Entrances {
		byCluster[e.Cluster] = append(byCluster[e.Cluster], e)
	}

	results := make([][]IntraEdge, len(graph.Clusters))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range graph.Clusters {
		i := i
		cl := &graph.Clusters[i]
		entrances := byCluster[cl.ID]
		if len(entrances) < 2 {
			continue
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = clusterIntraEdges(g, cl, entrances)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("intra-cluster search: %w", err)
	}

	var edges []IntraEdge
	for _, r := range results {
		edges = append(edges, r...)
	}
	return edges, nil
}

func clusterIntraEdges(g *grid.Grid, cl *Cluster, entrances []Entrance) []IntraEdge {
	members := make(map[grid.Coord]struct{}, len(cl.Tiles))
	for _, c := range cl.Tiles {
		members[c] = struct{}{}
	}
	acc := newSpanAccel(g, members)

	var edges []IntraEdge
	for i := 0; i < len(entrances); i++ {
		for j := i + 1; j < len(entrances); j++ {
			a, b := entrances[i], entrances[j]
			if a.Coord == b.Coord {
				// Same border tile facing two chunks; zero-cost link.
				edges = append(edges,
					IntraEdge{Cluster: cl.ID, From: a.ID, To: b.ID, Waypoints: []grid.Coord{a.Coord}},
					IntraEdge{Cluster: cl.ID, From: b.ID, To: a.ID, Waypoints: []grid.Coord{a.Coord}})
				continue
			}
			cost, path, ok := intraSearch(g, members, a.Coord, b.Coord, acc)
			if !ok {
				continue
			}
			way := CompressWaypoints(path)
			back := make([]grid.Coord, len(way))
			for k, c := range way {
				back[len(way)-1-k] = c
			}
			edges = append(edges,
				IntraEdge{Cluster: cl.ID, From: a.ID, To: b.ID, Cost: cost, Waypoints: way},
				IntraEdge{Cluster: cl.ID, From: b.ID, To: a.ID, Cost: cost, Waypoints: back})
		}
	}
	return edges
}
