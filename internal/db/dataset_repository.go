package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// DatasetRepository reads the raw world dataset: collision tiles,
// requirement predicates and the per-kind teleport node tables.
type DatasetRepository struct {
	pool *pgxpool.Pool
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(pool *pgxpool.Pool) *DatasetRepository {
	return &DatasetRepository{pool: pool}
}

// LoadRawTiles loads every collision tile row.
func (r *DatasetRepository) LoadRawTiles(ctx context.Context) (map[grid.Coord]grid.RawTile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT x, y, plane, terrain, blocked, edge_mask
		FROM tiles
		ORDER BY plane, y, x
	`)
	if err != nil {
		return nil, fmt.Errorf("loading tiles: %w", err)
	}
	defer rows.Close()

	raw := make(map[grid.Coord]grid.RawTile, 1<<16)
	for rows.Next() {
		var (
			c        grid.Coord
			terrain  bool
			blocked  bool
			edgeMask int16
		)
		if err := rows.Scan(&c.X, &c.Y, &c.Plane, &terrain, &blocked, &edgeMask); err != nil {
			return nil, fmt.Errorf("scanning tile row: %w", err)
		}
		raw[c] = grid.RawTile{
			Terrain:   terrain,
			Collision: grid.Collision{Center: blocked, Edges: grid.Direction(edgeMask)},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tile rows: %w", err)
	}
	return raw, nil
}

// LoadRequirements loads the predicate table.
func (r *DatasetRepository) LoadRequirements(ctx context.Context) ([]teleport.Predicate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, comparison, value
		FROM requirements
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("loading requirements: %w", err)
	}
	defer rows.Close()

	var preds []teleport.Predicate
	for rows.Next() {
		var p teleport.Predicate
		if err := rows.Scan(&p.ID, &p.Key, &p.Comparison, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning requirement row: %w", err)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requirement rows: %w", err)
	}
	return preds, nil
}

// nodeTables maps each action kind to its source table.
var nodeTables = []struct {
	kind  teleport.Kind
	table string
}{
	{teleport.KindDoor, "door_nodes"},
	{teleport.KindLodestone, "lodestone_nodes"},
	{teleport.KindObject, "object_nodes"},
	{teleport.KindNPC, "npc_nodes"},
	{teleport.KindItem, "item_nodes"},
	{teleport.KindIfSlot, "ifslot_nodes"},
}

// LoadTeleportNodes loads and unifies all six per-kind node tables.
func (r *DatasetRepository) LoadTeleportNodes(ctx context.Context) ([]teleport.Node, error) {
	var nodes []teleport.Node
	for _, nt := range nodeTables {
		kindNodes, err := r.loadNodeTable(ctx, nt.kind, nt.table)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, kindNodes...)
	}
	return nodes, nil
}

func (r *DatasetRepository) loadNodeTable(ctx context.Context, kind teleport.Kind, table string) ([]teleport.Node, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id,
		       src_min_x, src_max_x, src_min_y, src_max_y, src_plane,
		       dest_min_x, dest_max_x, dest_min_y, dest_max_y, dest_plane,
		       cost, next_kind, next_id, requirement_id
		FROM %s
		ORDER BY id
	`, table))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	defer rows.Close()

	var nodes []teleport.Node
	for rows.Next() {
		var (
			id                                       int64
			srcMinX, srcMaxX, srcMinY, srcMaxY, srcP *int32
			dMinX, dMaxX, dMinY, dMaxY, dP           *int32
			cost                                     int32
			nextKind                                 *string
			nextID                                   *int64
			reqID                                    *int64
		)
		if err := rows.Scan(&id,
			&srcMinX, &srcMaxX, &srcMinY, &srcMaxY, &srcP,
			&dMinX, &dMaxX, &dMinY, &dMaxY, &dP,
			&cost, &nextKind, &nextID, &reqID); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}

		n := teleport.Node{
			Ref:    teleport.NodeRef{Kind: kind, ID: id},
			Source: scanArea(srcMinX, srcMaxX, srcMinY, srcMaxY, srcP),
			Dest:   scanArea(dMinX, dMaxX, dMinY, dMaxY, dP),
			Cost:   cost,
		}
		if nextKind != nil && nextID != nil {
			k := teleport.ParseKind(*nextKind)
			if k == 0 {
				return nil, fmt.Errorf("%s row %d: unknown next kind %q", table, id, *nextKind)
			}
			n.Next = &teleport.NodeRef{Kind: k, ID: *nextID}
		}
		if reqID != nil {
			n.Requirement = *reqID
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return nodes, nil
}

func scanArea(minX, maxX, minY, maxY, plane *int32) *teleport.Area {
	if minX == nil || maxX == nil || minY == nil || maxY == nil || plane == nil {
		return nil
	}
	return &teleport.Area{MinX: *minX, MaxX: *maxX, MinY: *minY, MaxY: *maxY, Plane: *plane}
}
