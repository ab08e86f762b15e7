package search

import "github.com/questmap/worldroute/internal/teleport"

// Profile is a caller's compiled requirement assertions: one satisfied bit
// per registry predicate the assertions fulfil. Compiled once per query,
// checked per teleport edge with two bit operations.
type Profile struct {
	Mask uint64
}

// CompileProfile evaluates the assertions against the snapshot's registry.
// Unknown keys are ignored; absent keys leave their predicates unsatisfied.
func CompileProfile(reg *teleport.Registry, assertions map[string]int64) Profile {
	return Profile{Mask: reg.CompileProfile(assertions)}
}
