package snapshot

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/questmap/worldroute/internal/grid"
)

// computeHash folds the primary snapshot data into blake2b-256 in a fixed
// order. Derived indexes and distance tables are excluded: they are pure
// functions of the hashed inputs, and the landmark list itself is included
// so a changed selection changes the hash.
func computeHash(s *Snapshot) [32]byte {
	h, _ := blake2b.New256(nil)

	writeU32(h, uint32(s.grid.Len()))
	for _, c := range s.grid.Coords() {
		t := s.grid.At(c)
		writeCoord(h, c)
		h.Write([]byte{byte(t.Walk), flag(t.Terrain), flag(t.Blocked)})
	}

	writeU32(h, uint32(len(s.graph.Clusters)))
	for _, cl := range s.graph.Clusters {
		writeI64(h, int64(cl.ID))
		writeU32(h, uint32(len(cl.Tiles)))
	}
	writeU32(h, uint32(len(s.graph.Entrances)))
	for _, e := range s.graph.Entrances {
		writeI64(h, e.ID)
		writeI64(h, int64(e.Cluster))
		writeCoord(h, e.Coord)
		h.Write([]byte{byte(e.Dir)})
	}
	writeU32(h, uint32(len(s.graph.Inter)))
	for _, e := range s.graph.Inter {
		writeI64(h, e.From)
		writeI64(h, e.To)
		writeI32(h, e.Cost)
	}
	writeU32(h, uint32(len(s.graph.Intra)))
	for _, e := range s.graph.Intra {
		writeI64(h, e.From)
		writeI64(h, e.To)
		writeI32(h, e.Cost)
		writeU32(h, uint32(len(e.Waypoints)))
		for _, w := range e.Waypoints {
			writeCoord(h, w)
		}
	}

	// Flatten emits edges in deterministic head order.
	writeU32(h, uint32(len(s.edges.Edges)))
	for i := range s.edges.Edges {
		e := &s.edges.Edges[i]
		h.Write([]byte{byte(e.Kind), flag(e.Source != nil)})
		if e.Source != nil {
			writeArea(h, e.Source.MinX, e.Source.MaxX, e.Source.MinY, e.Source.MaxY, e.Source.Plane)
		}
		writeArea(h, e.Dest.MinX, e.Dest.MaxX, e.Dest.MinY, e.Dest.MaxY, e.Dest.Plane)
		writeI32(h, e.Cost)
		writeU64(h, e.Requirements)
	}

	preds := s.registry.Predicates()
	writeU32(h, uint32(len(preds)))
	for _, p := range preds {
		writeI64(h, p.ID)
		writeU32(h, uint32(len(p.Key)))
		h.Write([]byte(p.Key))
		writeU32(h, uint32(len(p.Comparison)))
		h.Write([]byte(p.Comparison))
		writeI64(h, p.Value)
	}

	writeU32(h, uint32(len(s.landmarks)))
	for _, l := range s.landmarks {
		writeCoord(h, l)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeCoord(h hash.Hash, c grid.Coord) {
	writeI32(h, c.X)
	writeI32(h, c.Y)
	writeI32(h, c.Plane)
}

func writeArea(h hash.Hash, minX, maxX, minY, maxY, plane int32) {
	writeI32(h, minX)
	writeI32(h, maxX)
	writeI32(h, minY)
	writeI32(h, maxY)
	writeI32(h, plane)
}

func writeI32(h hash.Hash, v int32)  { writeU32(h, uint32(v)) }
func writeI64(h hash.Hash, v int64)  { writeU64(h, uint64(v)) }
func writeU32(h hash.Hash, v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); h.Write(b[:]) }
func writeU64(h hash.Hash, v uint64) { var b [8]byte; binary.LittleEndian.PutUint64(b[:], v); h.Write(b[:]) }
