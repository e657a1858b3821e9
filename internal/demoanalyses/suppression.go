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

// flagProp is a two-valued lattice.Property (false < true, joined by OR)
// used by the Suppression scenario's FieldAssignability kind.
type flagProp struct {
	kind lattice.KindID
	v    bool
}

func (f flagProp) Kind() lattice.KindID { return f.kind }

func flagJoin(a, b lattice.Property) lattice.Property {
	if a.(flagProp).v {
		return a
	}
	return b
}

func flagLessEq(a, b lattice.Property) bool {
	return !a.(flagProp).v || b.(flagProp).v
}

// SuppressionOutcome adds the depender's wake count to the common Outcome,
// since Suppression's whole point is observable call counts rather than
// just final values.
type SuppressionOutcome struct {
	Outcome
	DependerWakeCount int
}

// Suppression is scenario 4 (§8): Immutability depends on
// FieldAssignability for entity m. FieldAssignability receives one interim
// update and one final; the suppression matrix withholds the interim's
// notification from Immutability, so Immutability's continuation runs
// exactly once. It is normally woken by FieldAssignability's final; if the
// interim lands before Immutability has registered as a depender, the
// failed registration wakes it once with that interim instead, and
// Immutability is then finalized by cycle resolution.
func Suppression(ctx context.Context, workers int) (SuppressionOutcome, error) {
	reg := lattice.NewRegistry()
	fieldAssignability, err := reg.Register("FieldAssignability", flagProp{v: false}, flagJoin, flagLessEq)
	if err != nil {
		return SuppressionOutcome{}, err
	}
	immutability, err := reg.Register("Immutability", flagProp{v: false}, flagJoin, flagLessEq)
	if err != nil {
		return SuppressionOutcome{}, err
	}
	m := uuid.New()

	var wakes int64

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name: "suppression",
		Suppress: propertystore.SuppressionMatrix{
			immutability.ID: {fieldAssignability.ID: true},
		},
		Kinds: []lattice.KindID{fieldAssignability.ID, immutability.ID},
	}, func(store *propertystore.Store) error {
		if err := store.ScheduleEagerComputationForEntity(m, immutability.ID, func(entity lattice.Entity) engine.Result {
			return engine.InterimResult{
				EP:        eoptionp.InterimUB{E: entity, K: immutability.ID, UBv: flagProp{kind: immutability.ID, v: true}},
				Dependees: []eoptionp.EOptionP{eoptionp.EPK{E: m, K: fieldAssignability.ID}},
				C: func(u eoptionp.EOptionP) any {
					atomic.AddInt64(&wakes, 1)
					if !u.IsFinal() {
						return engine.NoResult{}
					}
					p, _ := u.UB()
					return engine.FinalResult{EP: eoptionp.FinalEP{E: entity, K: immutability.ID, P: p}}
				},
			}
		}); err != nil {
			return err
		}

		// FieldAssignability arrives as a bare interim first, then its final,
		// submitted as two independent eager tasks for the same entity and
		// kind rather than one continuation chain: whichever order the
		// worker pool applies them in, the interim's notification to
		// dependers is suppressed and the continuation is consumed at most
		// once (see the race case in Suppression's doc above).
		if err := store.ScheduleEagerComputationForEntity(m, fieldAssignability.ID, func(entity lattice.Entity) engine.Result {
			return engine.InterimResult{
				EP: eoptionp.InterimUB{E: entity, K: fieldAssignability.ID, UBv: flagProp{kind: fieldAssignability.ID, v: false}},
				C:  func(eoptionp.EOptionP) any { return engine.NoResult{} },
			}
		}); err != nil {
			return err
		}
		return store.ScheduleEagerComputationForEntity(m, fieldAssignability.ID, func(entity lattice.Entity) engine.Result {
			return engine.FinalResult{EP: eoptionp.FinalEP{E: entity, K: fieldAssignability.ID, P: flagProp{kind: fieldAssignability.ID, v: true}}}
		})
	})
	return SuppressionOutcome{Outcome: outcome, DependerWakeCount: int(atomic.LoadInt64(&wakes))}, err
}
