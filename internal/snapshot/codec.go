package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/questmap/worldroute/internal/cluster"
	"github.com/questmap/worldroute/internal/grid"
	"github.com/questmap/worldroute/internal/teleport"
)

// diskForm is the persisted shape of a snapshot: primary data plus the
// landmark tables (expensive to recompute); lookup indexes are rebuilt on
// decode.
type diskForm struct {
	Tiles      []grid.Tile
	Edges      teleport.Set
	Predicates []teleport.Predicate
	Graph      cluster.Graph
	Landmarks  []grid.Coord
	DistFrom   []map[grid.Coord]int32
	DistTo     []map[grid.Coord]int32
	Hash       [32]byte
	BuiltAt    time.Time
}

// Encode serializes the snapshot for artifact storage.
func (s *Snapshot) Encode() ([]byte, error) {
	tiles := make([]grid.Tile, 0, s.grid.Len())
	for _, c := range s.grid.Coords() {
		tiles = append(tiles, *s.grid.At(c))
	}
	d := diskForm{
		Tiles:      tiles,
		Edges:      *s.edges,
		Predicates: s.registry.Predicates(),
		Graph:      *s.graph,
		Landmarks:  s.landmarks,
		DistFrom:   s.distFrom,
		DistTo:     s.distTo,
		Hash:       s.hash,
		BuiltAt:    s.builtAt,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&d); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores a snapshot from its stored form, rebuilds the lookup
// indexes and verifies the embedded content hash against the decoded data.
func Decode(blob []byte) (*Snapshot, error) {
	var d diskForm
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	reg, err := teleport.NewRegistry(d.Predicates)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	s := &Snapshot{
		grid:      grid.NewGrid(d.Tiles),
		edges:     &d.Edges,
		registry:  reg,
		graph:     &d.Graph,
		landmarks: d.Landmarks,
		distFrom:  d.DistFrom,
		distTo:    d.DistTo,
		hash:      d.Hash,
		builtAt:   d.BuiltAt,
	}
	s.buildIndexes()

	if got := computeHash(s); got != d.Hash {
		return nil, fmt.Errorf("decode snapshot: content hash mismatch")
	}
	return s, nil
}
