package grid

import (
	"fmt"
	"log/slog"
)

// Hop is a one-directional reachability transition contributed by a
// teleport action. A nil From means the hop is usable from anywhere and is
// expanded exactly once during extraction.
type Hop struct {
	From []Coord
	To   []Coord
}

// ExtractStats summarizes a reachability extraction.
type ExtractStats struct {
	Visited     int
	Dropped     int
	BitsCleared int
}

// Extract trims the grid to the maximal set reachable from start via walk
// mask edges and teleport hops, then sanitizes every retained tile's mask so
// no bit references a dropped neighbor. Teleport costs are ignored here;
// only reachability matters. Fails when the start tile is missing or
// blocked.
func Extract(start Coord, g *Grid, hops []Hop) (*Grid, ExtractStats, error) {
	st := g.At(start)
	if st == nil {
		return nil, ExtractStats{}, fmt.Errorf("extracting reachable tiles: start tile %v does not exist", start)
	}
	if !st.Walkable() {
		return nil, ExtractStats{}, fmt.Errorf("extracting reachable tiles: start tile %v is blocked", start)
	}

	// Index localized hops by source tile; collect global destinations.
	bySource := make(map[Coord][]Coord)
	var global []Coord
	for _, h := range hops {
		if h.From == nil {
			global = append(global, h.To...)
			continue
		}
		for _, f := range h.From {
			bySource[f] = append(bySource[f], h.To...)
		}
	}

	visited := make(map[Coord]struct{}, g.Len())
	queue := make([]Coord, 0, g.Len())
	push := func(c Coord) {
		if _, ok := visited[c]; ok {
			return
		}
		if !g.Walkable(c) {
			return
		}
		visited[c] = struct{}{}
		queue = append(queue, c)
	}

	push(start)
	globalExpanded := false

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		t := g.At(c)
		for d := Direction(1); d != 0; d <<= 1 {
			if t.Walk&d != 0 {
				push(c.Step(d))
			}
		}
		for _, dest := range bySource[c] {
			push(dest)
		}
		if !globalExpanded {
			for _, dest := range global {
				push(dest)
			}
			globalExpanded = true
		}
	}

	// Rebuild with only the visited tiles, clearing dangling mask bits.
	stats := ExtractStats{Visited: len(visited), Dropped: g.Len() - len(visited)}
	retained := make([]Tile, 0, len(visited))
	for _, c := range g.Coords() {
		if _, ok := visited[c]; !ok {
			continue
		}
		t := *g.At(c)
		for d := Direction(1); d != 0; d <<= 1 {
			if t.Walk&d == 0 {
				continue
			}
			if _, ok := visited[c.Step(d)]; !ok {
				t.Walk &^= d
				stats.BitsCleared++
			}
		}
		t.Block = ^t.Walk
		retained = append(retained, t)
	}

	slog.Info("reachability extracted",
		"start", fmt.Sprintf("%d,%d,%d", start.X, start.Y, start.Plane),
		"visited", stats.Visited,
		"dropped", stats.Dropped,
		"bits_cleared", stats.BitsCleared)

	return NewGrid(retained), stats, nil
}
