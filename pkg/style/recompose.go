package style

import "sync/atomic"

// Recomposer serializes style recompositions so the latest view state
// always wins.
//
// A recomposition may suspend on fetches (archive metadata, a published
// layer set), so a slow composition for stale state can finish after a
// newer one. Callers mark the start of each recomposition with [Begin]
// and apply the result only if [Current] still holds; stale results are
// discarded, not applied.
//
//	gen := rc.Begin()
//	doc := compose(...)        // may suspend
//	if rc.Current(gen) {
//	    apply(doc)
//	}
type Recomposer struct {
	gen atomic.Uint64
}

// Begin registers a new recomposition and returns its generation,
// invalidating all earlier in-flight recompositions.
func (r *Recomposer) Begin() uint64 {
	return r.gen.Add(1)
}

// Current reports whether a recomposition begun at gen is still the
// latest. Results from non-current generations must be dropped.
func (r *Recomposer) Current(gen uint64) bool {
	return r.gen.Load() == gen
}
