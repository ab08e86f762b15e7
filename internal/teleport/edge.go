package teleport

import "github.com/questmap/worldroute/internal/grid"

// Step is one flattened chain member, retained for diagnostics.
type Step struct {
	Ref         NodeRef
	Cost        int32
	Requirement int64
}

// Edge is the queryable macro form of one or more chained nodes. Source nil
// marks a global teleport, usable from any tile subject to eligibility.
type Edge struct {
	Source       *Area
	Dest         Area
	Cost         int32
	Requirements uint64 // bits that must all be satisfied by the profile
	Kind         Kind   // kind of the chain head
	Steps        []Step
}

// Eligible reports whether a profile's satisfied-bits mask covers every
// requirement of this edge.
func (e *Edge) Eligible(profileMask uint64) bool {
	return e.Requirements&^profileMask == 0
}

// Global reports whether the edge is usable from anywhere.
func (e *Edge) Global() bool {
	return e.Source == nil
}

// Set is the normalized output of one build: all macro-edges split by
// classification.
type Set struct {
	Edges []Edge // all edges, globals and localized
}

// Globals returns indices into Edges of the global teleports.
func (s *Set) Globals() []int {
	var out []int
	for i := range s.Edges {
		if s.Edges[i].Global() {
			out = append(out, i)
		}
	}
	return out
}

// Hops converts the edge set into reachability hops for the extractor.
// Costs and requirements are intentionally ignored: during extraction only
// connectivity matters.
func (s *Set) Hops() []grid.Hop {
	hops := make([]grid.Hop, 0, len(s.Edges))
	for i := range s.Edges {
		e := &s.Edges[i]
		h := grid.Hop{To: e.Dest.Tiles()}
		if e.Source != nil {
			h.From = e.Source.Tiles()
		}
		hops = append(hops, h)
	}
	return hops
}
