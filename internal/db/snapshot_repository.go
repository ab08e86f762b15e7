package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/questmap/worldroute/internal/snapshot"
)

// ErrNoSnapshot is returned when no stored snapshot matches.
var ErrNoSnapshot = errors.New("no stored snapshot")

// SnapshotRepository persists built snapshots keyed by content hash.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save stores the encoded snapshot. Saving the same hash twice is a no-op:
// the content hash guarantees the blob is identical.
func (r *SnapshotRepository) Save(ctx context.Context, s *snapshot.Snapshot) error {
	blob, err := s.Encode()
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	v := s.Version()
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO snapshots (hash, blob, tiles, clusters, entrances, teleports, landmarks, built_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (hash) DO NOTHING
	`, v.Hash, blob, v.Tiles, v.Clusters, v.Entrances, v.Teleports, v.Landmarks, v.BuiltAt)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", v.Hash, err)
	}
	slog.Info("snapshot saved", "hash", v.Hash, "bytes", len(blob), "inserted", tag.RowsAffected() == 1)
	return nil
}

// Load retrieves and decodes a snapshot by hash. Decoding re-verifies the
// content hash, so a corrupt blob never reaches the query engine.
func (r *SnapshotRepository) Load(ctx context.Context, hash string) (*snapshot.Snapshot, error) {
	var blob []byte
	err := r.pool.QueryRow(ctx,
		`SELECT blob FROM snapshots WHERE hash = $1`, hash,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loading snapshot %s: %w", hash, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", hash, err)
	}
	s, err := snapshot.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", hash, err)
	}
	if got := s.Version().Hash; got != hash {
		return nil, fmt.Errorf("loading snapshot %s: stored blob decodes to %s", hash, got)
	}
	return s, nil
}

// LoadLatest retrieves the most recently built snapshot.
func (r *SnapshotRepository) LoadLatest(ctx context.Context) (*snapshot.Snapshot, error) {
	var hash string
	err := r.pool.QueryRow(ctx,
		`SELECT hash FROM snapshots ORDER BY built_at DESC LIMIT 1`,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	return r.Load(ctx, hash)
}
