package demoanalyses

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// CancellationAtScale is scenario 6 (§8): ten thousand independent
// entities are each scheduled to finalize a trivial property; a triggered
// computation counts finals as they land and cancels the phase once one
// hundred have landed. The phase is expected to stop well short of all
// ten thousand, with no more finals recorded after cancellation and no
// corrupted state for the entities that did finalize.
func CancellationAtScale(ctx context.Context, workers int) (Outcome, lattice.KindID, int64, error) {
	const (
		total     = 10000
		cancelAt  = 100
		kindLabel = "Trivial"
	)

	reg := lattice.NewRegistry()
	k, err := reg.Register(kindLabel, intProp{v: -1}, intJoin, intLessEq)
	if err != nil {
		return Outcome{}, 0, 0, err
	}

	entities := make([]lattice.Entity, total)
	for i := range entities {
		entities[i] = uuid.New()
	}

	var finals int64

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name:  "cancellation-at-scale",
		Kinds: []lattice.KindID{k.ID},
	}, func(store *propertystore.Store) error {
		store.RegisterTriggeredComputation(k.ID, func(lattice.Entity) engine.Result {
			if atomic.AddInt64(&finals, 1) == cancelAt {
				store.Cancel()
			}
			return engine.NoResult{}
		})
		return store.ScheduleEagerComputationsForEntities(entities, k.ID, func(entity lattice.Entity) engine.Result {
			return engine.FinalResult{EP: eoptionp.FinalEP{E: entity, K: k.ID, P: intProp{kind: k.ID, v: 1}}}
		})
	})
	return outcome, k.ID, atomic.LoadInt64(&finals), err
}
