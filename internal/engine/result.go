// Package engine implements the dependency graph & update engine (§4.3):
// the component that processes analysis results, applies monotone
// updates, walks forward and reverse edges, enqueues continuations, and
// detects quiescence before running fallback and cycle resolution.
package engine

import (
	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
)

// Result is the sum type analyses emit, per §4.3's result taxonomy. It is
// `any` at the type level; the concrete types below are the only ones the
// engine knows how to integrate.
type Result any

// FinalResult is a single final property for one entity.
type FinalResult struct {
	EP eoptionp.FinalEP
}

// Results is a batch of results processed atomically in order: each is
// fully integrated (including its own notification fan-out) before the
// next is considered.
type Results struct {
	Of []Result
}

// MultiResult is a convenience batch of final results.
type MultiResult struct {
	Of []FinalResult
}

// InterimResult carries an interim value plus the continuation to call
// when any of the listed dependees updates, and the exact EOptionP
// snapshots of those dependees as observed by the analysis (needed for the
// addDepender compare-and-set in §4.3 step 3).
type InterimResult struct {
	EP        eoptionp.EOptionP
	Dependees []eoptionp.EOptionP
	C         epkstate.Continuation
}

// PartialResult is a monotone, read-modify-write update on a single
// entity's property, used for collaborative derivation (§4.3). Update runs
// exactly once per PartialResult, under the state's lock, and must depend
// only on its argument. If its proposed value is not an update under
// IsUpdated, the value is dropped; Update is never re-run.
type PartialResult struct {
	Key    epkstate.Key
	Update func(old eoptionp.EOptionP) (eoptionp.EOptionP, bool)
}

// InterimPartialResult carries no value of its own: only dependees and a
// continuation, e.g. to observe another analysis's progress without
// contributing to the value itself.
type InterimPartialResult struct {
	Key       epkstate.Key
	Dependees []eoptionp.EOptionP
	C         epkstate.Continuation
}

// NoResult means the analysis has nothing to contribute for this entity in
// this phase.
type NoResult struct{}

func keyOf(ep eoptionp.EOptionP) epkstate.Key {
	return epkstate.Key{E: ep.Entity(), K: ep.Kind()}
}
