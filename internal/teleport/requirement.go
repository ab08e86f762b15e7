package teleport

import (
	"fmt"
	"log/slog"
	"sort"
)

// Predicate is one requirement row: a profile key compared against an
// expected value. Comparison is one of =, !=, <, <=, >, >=.
type Predicate struct {
	ID         int64
	Key        string
	Comparison string
	Value      int64
}

// MaxPredicates bounds the requirement bitmask width.
const MaxPredicates = 64

// Registry assigns every predicate a fixed bit position at build time so
// that query-time eligibility is a single mask test.
type Registry struct {
	preds   []Predicate
	bitByID map[int64]int
}

// NewRegistry builds a registry from predicate rows. Bit positions are
// assigned in ascending ID order so rebuilds are stable. More than 64
// distinct predicates is a structural build error.
func NewRegistry(preds []Predicate) (*Registry, error) {
	if len(preds) > MaxPredicates {
		return nil, fmt.Errorf("compiling requirements: %d predicates exceed the %d-bit mask", len(preds), MaxPredicates)
	}
	sorted := make([]Predicate, len(preds))
	copy(sorted, preds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := &Registry{preds: sorted, bitByID: make(map[int64]int, len(sorted))}
	for i, p := range sorted {
		if _, dup := r.bitByID[p.ID]; dup {
			return nil, fmt.Errorf("compiling requirements: duplicate predicate id %d", p.ID)
		}
		r.bitByID[p.ID] = i
	}
	return r, nil
}

// Bit returns the mask with only the given predicate's bit set, and whether
// the predicate is known.
func (r *Registry) Bit(id int64) (uint64, bool) {
	i, ok := r.bitByID[id]
	if !ok {
		return 0, false
	}
	return 1 << uint(i), true
}

// Len returns the number of registered predicates.
func (r *Registry) Len() int {
	return len(r.preds)
}

// Predicates returns the registered predicates in bit order.
func (r *Registry) Predicates() []Predicate {
	return r.preds
}

// CompileProfile evaluates every predicate against the caller's assertions
// and returns the satisfied-bits mask. A missing key or a malformed
// comparison evaluates unsatisfied, never as implicit eligibility.
func (r *Registry) CompileProfile(assertions map[string]int64) uint64 {
	var mask uint64
	for i, p := range r.preds {
		v, ok := assertions[p.Key]
		if !ok {
			continue
		}
		if p.evaluate(v) {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func (p Predicate) evaluate(v int64) bool {
	switch p.Comparison {
	case "=":
		return v == p.Value
	case "!=":
		return v != p.Value
	case "<":
		return v < p.Value
	case "<=":
		return v <= p.Value
	case ">":
		return v > p.Value
	case ">=":
		return v >= p.Value
	}
	slog.Warn("malformed requirement comparison, treating as unsatisfied",
		"predicate", p.ID, "comparison", p.Comparison)
	return false
}
