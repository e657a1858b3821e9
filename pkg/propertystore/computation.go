// Package propertystore is the public façade described in §4.4: the entry
// point analyses and callers use to schedule computations, read
// properties, and wait for a phase to settle. It owns a single
// internal/engine.Engine that every phase runs on and hides the result taxonomy
// behind a smaller surface: apply, force, the three registration methods,
// setupPhase, and waitOnPhaseCompletion.
package propertystore

import (
	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// ComputationFunc computes a property, or partial progress toward one, for
// a single entity. It is the store's uniform shape for eager, lazy, and
// triggered computations alike; what differs between the three is only
// when and how often the store decides to call it.
type ComputationFunc func(e lattice.Entity) engine.Result

// eagerTask pairs an entity with the computation to run for it, queued by
// ScheduleEagerComputationForEntity(s) ahead of SetupPhase.
type eagerTask struct {
	entity lattice.Entity
	kind   lattice.KindID
	fn     ComputationFunc
}
