package grid

// Direction is an 8-bit walk mask, one bit per compass direction.
// North is +y, East is +x.
type Direction byte

const (
	DirNorth Direction = 1 << 0 // 0x01
	DirEast  Direction = 1 << 1 // 0x02
	DirSouth Direction = 1 << 2 // 0x04
	DirWest  Direction = 1 << 3 // 0x08

	DirNorthEast Direction = 1 << 4 // 0x10
	DirSouthEast Direction = 1 << 5 // 0x20
	DirSouthWest Direction = 1 << 6 // 0x40
	DirNorthWest Direction = 1 << 7 // 0x80

	DirCardinals Direction = DirNorth | DirEast | DirSouth | DirWest
	DirAll       Direction = 0xFF
)

// Movement cost constants in fixed-point units: 1024 per straight step,
// 1448 per diagonal step (1024 * sqrt(2), rounded).
const (
	StraightCost = 1024
	DiagonalCost = 1448
)

// ChunkSize is the world partition width in tiles (chunk = x>>6, y>>6).
const ChunkSize = 64

// Cardinals in deterministic expansion order.
var Cardinals = [4]Direction{DirNorth, DirEast, DirSouth, DirWest}

// Diagonals in deterministic expansion order.
var Diagonals = [4]Direction{DirNorthEast, DirSouthEast, DirSouthWest, DirNorthWest}

// AllDirections lists all eight bits, cardinals first.
var AllDirections = [8]Direction{
	DirNorth, DirEast, DirSouth, DirWest,
	DirNorthEast, DirSouthEast, DirSouthWest, DirNorthWest,
}

var deltas = map[Direction][2]int32{
	DirNorth:     {0, 1},
	DirEast:      {1, 0},
	DirSouth:     {0, -1},
	DirWest:      {-1, 0},
	DirNorthEast: {1, 1},
	DirSouthEast: {1, -1},
	DirSouthWest: {-1, -1},
	DirNorthWest: {-1, 1},
}

var opposites = map[Direction]Direction{
	DirNorth:     DirSouth,
	DirEast:      DirWest,
	DirSouth:     DirNorth,
	DirWest:      DirEast,
	DirNorthEast: DirSouthWest,
	DirSouthEast: DirNorthWest,
	DirSouthWest: DirNorthEast,
	DirNorthWest: DirSouthEast,
}

// diagonal -> its two contributing cardinals
var components = map[Direction][2]Direction{
	DirNorthEast: {DirNorth, DirEast},
	DirSouthEast: {DirSouth, DirEast},
	DirSouthWest: {DirSouth, DirWest},
	DirNorthWest: {DirNorth, DirWest},
}

// Delta returns the (dx, dy) offset for a single direction bit.
func (d Direction) Delta() (int32, int32) {
	dd := deltas[d]
	return dd[0], dd[1]
}

// Opposite returns the reciprocal direction bit.
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// IsDiagonal reports whether d is one of the four diagonal bits.
func (d Direction) IsDiagonal() bool {
	return d&^DirCardinals != 0
}

// Components returns the two cardinal bits contributing to a diagonal.
// Only valid for diagonal directions.
func (d Direction) Components() (Direction, Direction) {
	c := components[d]
	return c[0], c[1]
}

// Cost returns the movement cost of one step in this direction.
func (d Direction) Cost() int32 {
	if d.IsDiagonal() {
		return DiagonalCost
	}
	return StraightCost
}

// String returns the compass name of a single direction bit.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "N"
	case DirEast:
		return "E"
	case DirSouth:
		return "S"
	case DirWest:
		return "W"
	case DirNorthEast:
		return "NE"
	case DirSouthEast:
		return "SE"
	case DirSouthWest:
		return "SW"
	case DirNorthWest:
		return "NW"
	}
	return "?"
}

// ParseDirection maps a compass name to a direction bit. Returns 0 for
// unknown names.
func ParseDirection(s string) Direction {
	switch s {
	case "N":
		return DirNorth
	case "E":
		return DirEast
	case "S":
		return DirSouth
	case "W":
		return DirWest
	case "NE":
		return DirNorthEast
	case "SE":
		return DirSouthEast
	case "SW":
		return DirSouthWest
	case "NW":
		return DirNorthWest
	}
	return 0
}
