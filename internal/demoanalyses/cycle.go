package demoanalyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// level is the three-point lattice Bot < Mid < Top used by
// CycleWithTightening.
type level struct {
	kind lattice.KindID
	v    int
}

const (
	levelBot = 0
	levelMid = 1
	levelTop = 2
)

func (l level) Kind() lattice.KindID { return l.kind }

func levelJoin(a, b lattice.Property) lattice.Property {
	if a.(level).v >= b.(level).v {
		return a
	}
	return b
}

func levelLessEq(a, b lattice.Property) bool { return a.(level).v <= b.(level).v }

// CycleWithTightening is scenario 3 (§8): kind K with lattice Bot<Mid<Top
// over entities e1, e2. Each entity's analysis proposes K(ei)=Mid as its
// upper bound while waiting on K(ej); neither ever tightens further
// without external input, so at quiescence cycle resolution promotes both
// ubs straight to final. Expected finals: K(e1)=Mid, K(e2)=Mid.
func CycleWithTightening(ctx context.Context, workers int) (Outcome, lattice.Entity, lattice.Entity, lattice.KindID, error) {
	reg := lattice.NewRegistry()
	k, err := reg.Register("K", level{v: levelBot}, levelJoin, levelLessEq)
	if err != nil {
		return Outcome{}, nil, nil, 0, err
	}
	e1, e2 := uuid.New(), uuid.New()

	waitOn := func(self, other lattice.Entity) func(lattice.Entity) engine.Result {
		return func(entity lattice.Entity) engine.Result {
			return engine.InterimResult{
				EP:        eoptionp.InterimUB{E: self, K: k.ID, UBv: level{kind: k.ID, v: levelMid}},
				Dependees: []eoptionp.EOptionP{eoptionp.EPK{E: other, K: k.ID}},
				C:         func(eoptionp.EOptionP) any { return engine.NoResult{} },
			}
		}
	}

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name:  "cycle-with-tightening",
		Kinds: []lattice.KindID{k.ID},
	}, func(store *propertystore.Store) error {
		if err := store.ScheduleEagerComputationForEntity(e1, k.ID, waitOn(e1, e2)); err != nil {
			return err
		}
		return store.ScheduleEagerComputationForEntity(e2, k.ID, waitOn(e2, e1))
	})
	return outcome, e1, e2, k.ID, err
}
