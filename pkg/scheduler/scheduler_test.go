package scheduler_test

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/internal/fpcflog"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
	"github.com/fpcfgo/fpcf/pkg/scheduler"
)

type level int

func (l level) Kind() lattice.KindID { return 0 }

func maxJoin(a, b lattice.Property) lattice.Property {
	if a.(level) >= b.(level) {
		return a
	}
	return b
}

func leq(a, b lattice.Property) bool { return a.(level) <= b.(level) }

func TestRunExecutesPhasesInDependencyOrder(t *testing.T) {
	reg := lattice.NewRegistry()
	base, err := reg.Register("Base", level(0), maxJoin, leq)
	qt.Assert(t, qt.IsNil(err))
	derived, err := reg.Register("Derived", level(0), maxJoin, leq)
	qt.Assert(t, qt.IsNil(err))

	sched := scheduler.New(reg, 2, false, nil)

	var ranOrder []string

	err = sched.Register(scheduler.Manifest{
		ID:             "base-analysis",
		DerivesEagerly: []lattice.KindID{base.ID},
		Start: func(store *propertystore.Store) error {
			ranOrder = append(ranOrder, "base")
			return store.ScheduleEagerComputationForEntity("m", base.ID, func(e lattice.Entity) engine.Result {
				return engine.FinalResult{EP: eoptionp.FinalEP{E: e, K: base.ID, P: level(1)}}
			})
		},
	})
	qt.Assert(t, qt.IsNil(err))

	err = sched.Register(scheduler.Manifest{
		ID:             "derived-analysis",
		Uses:           []scheduler.AnalysisID{"base-analysis"},
		DerivesEagerly: []lattice.KindID{derived.ID},
		Start: func(store *propertystore.Store) error {
			ranOrder = append(ranOrder, "derived")
			baseVal, err := store.Apply("m", base.ID)
			if err != nil {
				return err
			}
			p, _ := baseVal.UB()
			return store.ScheduleEagerComputationForEntity("m", derived.ID, func(e lattice.Entity) engine.Result {
				return engine.FinalResult{EP: eoptionp.FinalEP{E: e, K: derived.ID, P: p}}
			})
		},
	})
	qt.Assert(t, qt.IsNil(err))

	store := propertystore.New(reg, fpcflog.Discard(), 2)
	results, err := sched.Run(context.Background(), store)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(results, 2))
	qt.Assert(t, qt.DeepEquals(ranOrder, []string{"base", "derived"}))

	for _, r := range results {
		qt.Assert(t, qt.IsTrue(r.Ok()))
	}
}
