package teleport

import (
	"fmt"

	"github.com/questmap/worldroute/internal/grid"
)

// Kind discriminates the raw teleport action variants. The normalizer only
// ever reads the common fields; the kind survives for diagnostics and for
// the door bidirectionality rule.
type Kind uint8

const (
	KindDoor Kind = iota + 1
	KindLodestone
	KindObject
	KindNPC
	KindItem
	KindIfSlot
)

func (k Kind) String() string {
	switch k {
	case KindDoor:
		return "door"
	case KindLodestone:
		return "lodestone"
	case KindObject:
		return "object"
	case KindNPC:
		return "npc"
	case KindItem:
		return "item"
	case KindIfSlot:
		return "ifslot"
	}
	return "unknown"
}

// ParseKind maps a stored kind tag back to its value. Returns 0 for unknown
// tags.
func ParseKind(s string) Kind {
	switch s {
	case "door":
		return KindDoor
	case "lodestone":
		return KindLodestone
	case "object":
		return KindObject
	case "npc":
		return KindNPC
	case "item":
		return KindItem
	case "ifslot":
		return KindIfSlot
	}
	return 0
}

// NodeRef identifies one raw action record. IDs are unique per kind, not
// globally, matching the per-kind source tables.
type NodeRef struct {
	Kind Kind
	ID   int64
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// Area is an inclusive tile rectangle on one plane.
type Area struct {
	MinX, MaxX, MinY, MaxY, Plane int32
}

// PointArea returns a 1x1 area covering a single tile.
func PointArea(c grid.Coord) Area {
	return Area{MinX: c.X, MaxX: c.X, MinY: c.Y, MaxY: c.Y, Plane: c.Plane}
}

// Contains reports whether the area covers c.
func (a Area) Contains(c grid.Coord) bool {
	return c.Plane == a.Plane &&
		c.X >= a.MinX && c.X <= a.MaxX &&
		c.Y >= a.MinY && c.Y <= a.MaxY
}

// Anchor returns the representative landing tile of the area (its center,
// rounded toward the minimum corner).
func (a Area) Anchor() grid.Coord {
	return grid.Coord{
		X:     a.MinX + (a.MaxX-a.MinX)/2,
		Y:     a.MinY + (a.MaxY-a.MinY)/2,
		Plane: a.Plane,
	}
}

// Tiles enumerates every coordinate in the area.
func (a Area) Tiles() []grid.Coord {
	out := make([]grid.Coord, 0, (a.MaxX-a.MinX+1)*(a.MaxY-a.MinY+1))
	for y := a.MinY; y <= a.MaxY; y++ {
		for x := a.MinX; x <= a.MaxX; x++ {
			out = append(out, grid.Coord{X: x, Y: y, Plane: a.Plane})
		}
	}
	return out
}

// Node is one raw teleport action record. Source nil means the action is
// usable from anywhere (global). Dest nil is only legal on chain links that
// forward to a Next node.
type Node struct {
	Ref         NodeRef
	Source      *Area
	Dest        *Area
	Cost        int32
	Next        *NodeRef
	Requirement int64 // requirement id, 0 = none
}
