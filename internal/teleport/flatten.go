package teleport

import (
	"log/slog"
	"sort"
)

// FlattenStats summarizes one normalization pass.
type FlattenStats struct {
	Heads   int
	Edges   int
	Cycles  int
	NoDest  int
	BadReqs int
}

// Flatten resolves next-node chains into macro-edges. A chain head is any
// node not referenced as another node's Next. Cost accumulates along the
// chain; the requirement mask is the union of every step's bits (logical
// AND at evaluation time); the final node's destination becomes the edge
// destination. Chains containing a cycle, ending without a destination, or
// referencing an unknown predicate are dropped and logged, never fatal.
//
// Single-node door chains additionally emit the reverse edge: doors swing
// both ways.
func Flatten(nodes []Node, reg *Registry) (*Set, FlattenStats) {
	byRef := make(map[NodeRef]*Node, len(nodes))
	referenced := make(map[NodeRef]struct{})
	for i := range nodes {
		n := &nodes[i]
		byRef[n.Ref] = n
		if n.Next != nil {
			referenced[*n.Next] = struct{}{}
		}
	}

	var heads []*Node
	for i := range nodes {
		n := &nodes[i]
		if _, isLink := referenced[n.Ref]; !isLink {
			heads = append(heads, n)
		}
	}
	// Deterministic output order regardless of input order.
	sort.Slice(heads, func(i, j int) bool {
		a, b := heads[i].Ref, heads[j].Ref
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})

	stats := FlattenStats{Heads: len(heads)}
	set := &Set{}

	for _, head := range heads {
		edge, ok := flattenChain(head, byRef, reg, &stats)
		if !ok {
			continue
		}
		set.Edges = append(set.Edges, edge)
		stats.Edges++

		if head.Ref.Kind == KindDoor && head.Next == nil && head.Source != nil {
			rev := edge
			src := *edge.Source
			rev.Source = &edge.Dest
			rev.Dest = src
			set.Edges = append(set.Edges, rev)
			stats.Edges++
		}
	}

	slog.Info("teleport chains flattened",
		"heads", stats.Heads,
		"edges", stats.Edges,
		"cycles_dropped", stats.Cycles,
		"no_destination", stats.NoDest,
		"unknown_requirements", stats.BadReqs)

	return set, stats
}

func flattenChain(head *Node, byRef map[NodeRef]*Node, reg *Registry, stats *FlattenStats) (Edge, bool) {
	edge := Edge{Source: head.Source, Kind: head.Ref.Kind}
	visited := map[NodeRef]struct{}{}

	cur := head
	for {
		if _, seen := visited[cur.Ref]; seen {
			stats.Cycles++
			slog.Warn("teleport chain cycle, dropping", "head", head.Ref, "at", cur.Ref)
			return Edge{}, false
		}
		visited[cur.Ref] = struct{}{}

		edge.Cost += cur.Cost
		edge.Steps = append(edge.Steps, Step{Ref: cur.Ref, Cost: cur.Cost, Requirement: cur.Requirement})
		if cur.Requirement != 0 {
			bit, known := reg.Bit(cur.Requirement)
			if !known {
				stats.BadReqs++
				slog.Warn("teleport chain references unknown requirement, dropping",
					"head", head.Ref, "requirement", cur.Requirement)
				return Edge{}, false
			}
			edge.Requirements |= bit
		}

		if cur.Next == nil {
			break
		}
		next, ok := byRef[*cur.Next]
		if !ok {
			stats.NoDest++
			slog.Warn("teleport chain link missing, dropping", "head", head.Ref, "next", *cur.Next)
			return Edge{}, false
		}
		cur = next
	}

	if cur.Dest == nil {
		stats.NoDest++
		slog.Warn("teleport chain ends without destination, dropping", "head", head.Ref, "tail", cur.Ref)
		return Edge{}, false
	}
	edge.Dest = *cur.Dest
	return edge, true
}
