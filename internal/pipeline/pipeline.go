// Package pipeline wires the dataset loaders to the snapshot compiler: load
// raw tiles and teleport nodes, derive and reconcile walk masks, trim to the
// reachable set, flatten teleport chains, then compile.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/questmap/worldroute/internal/config"
	"github.com/questmap/worldroute/internal/db"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/snapshot"
	"github.com/questmap/worldroute/internal/teleport"
)

// Build runs the full dataset-to-snapshot pipeline.
func Build(ctx context.Context, database *db.DB, cfg config.BuildConfig) (*snapshot.Snapshot, error) {
	started := time.Now()
	ds := db.NewDatasetRepository(database.Pool())

	raw, err := ds.LoadRawTiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("building snapshot: dataset has no tiles")
	}
	g := grid.NewGrid(grid.Assemble(raw))

	preds, err := ds.LoadRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	reg, err := teleport.NewRegistry(preds)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	nodes, err := ds.LoadTeleportNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}
	set, _ := teleport.Flatten(nodes, reg)

	x, y, plane := cfg.StartTile()
	start := grid.Coord{X: x, Y: y, Plane: plane}
	reachable, _, err := grid.Extract(start, g, set.Hops())
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	snap, err := snapshot.Build(ctx, reachable, set, reg, snapshot.Options{
		Landmarks: cfg.Landmarks,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("pipeline finished", "hash", snap.Version().Hash, "took", time.Since(started))
	return snap, nil
}
