package grid

// Coord identifies a tile by world position and plane.
type Coord struct {
	X, Y, Plane int32
}

// Step returns the coordinate one tile away in direction d, same plane.
func (c Coord) Step(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy, Plane: c.Plane}
}

// ChunkCoord identifies a 64x64 tile chunk on one plane.
type ChunkCoord struct {
	X, Z, Plane int32
}

// ChunkOf returns the chunk containing c. Arithmetic shift keeps negative
// coordinates consistent (floor division by 64).
func ChunkOf(c Coord) ChunkCoord {
	return ChunkCoord{X: c.X >> 6, Z: c.Y >> 6, Plane: c.Plane}
}

// Bounds returns the inclusive tile bounds of the chunk.
func (cc ChunkCoord) Bounds() (x0, y0, x1, y1 int32) {
	x0 = cc.X * ChunkSize
	y0 = cc.Z * ChunkSize
	return x0, y0, x0 + ChunkSize - 1, y0 + ChunkSize - 1
}

// Tile is one cell of the world grid. Walk holds the allowed movement
// directions, Block its complement (kept for diagnostics only).
type Tile struct {
	Coord   Coord
	Terrain bool
	Blocked bool
	Walk    Direction
	Block   Direction
}

// Walkable reports whether the tile can be stood on at all. An empty walk
// mask does not disqualify a tile: a teleport may land on a pocket with no
// walking exits. Movement off the tile is governed by the mask bits alone.
func (t *Tile) Walkable() bool {
	return !t.Blocked
}
