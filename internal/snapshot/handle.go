package snapshot

import (
	"log/slog"
	"sync/atomic"
)

// Handle publishes the active snapshot to concurrent readers. Queries
// acquire a pointer once and keep using it for their whole run; a swap never
// invalidates in-flight work, the garbage collector reclaims the old bundle
// when the last query drops it.
type Handle struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
}

// NewHandle returns a handle publishing s (which may be nil until the first
// build finishes).
func NewHandle(s *Snapshot) *Handle {
	h := &Handle{}
	if s != nil {
		h.Swap(s)
	}
	return h
}

// Acquire returns the active snapshot, or nil when none is published yet.
func (h *Handle) Acquire() *Snapshot {
	return h.current.Load()
}

// Swap publishes s and returns the new generation number.
func (h *Handle) Swap(s *Snapshot) uint64 {
	h.current.Store(s)
	gen := h.generation.Add(1)
	slog.Info("snapshot published", "generation", gen, "hash", s.Version().Hash)
	return gen
}

// Generation returns the number of swaps so far.
func (h *Handle) Generation() uint64 {
	return h.generation.Load()
}
