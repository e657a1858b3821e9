package demoanalyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// LinearChain is scenario 1 (§8): kinds K0, K1, K2 over one entity. A0
// returns K0(e)=1 unconditionally; A1 reads K0(e) and, once final, returns
// K1(e)=K0(e)+10; A2 reads K1(e) and returns K2(e)=K1(e)*2. Expected
// finals: K0=1, K1=11, K2=22.
func LinearChain(ctx context.Context, workers int) (Outcome, lattice.Entity, lattice.KindID, lattice.KindID, lattice.KindID, error) {
	reg := lattice.NewRegistry()
	k0, err := reg.Register("K0", intProp{v: -1}, intJoin, intLessEq)
	if err != nil {
		return Outcome{}, nil, 0, 0, 0, err
	}
	k1, err := reg.Register("K1", intProp{v: -1}, intJoin, intLessEq)
	if err != nil {
		return Outcome{}, nil, 0, 0, 0, err
	}
	k2, err := reg.Register("K2", intProp{v: -1}, intJoin, intLessEq)
	if err != nil {
		return Outcome{}, nil, 0, 0, 0, err
	}
	e := uuid.New()

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name:  "linear-chain",
		Kinds: []lattice.KindID{k0.ID, k1.ID, k2.ID},
	}, func(store *propertystore.Store) error {
		if err := store.ScheduleEagerComputationForEntity(e, k0.ID, func(entity lattice.Entity) engine.Result {
			return engine.FinalResult{EP: eoptionp.FinalEP{E: entity, K: k0.ID, P: intProp{kind: k0.ID, v: 1}}}
		}); err != nil {
			return err
		}
		if err := store.ScheduleEagerComputationForEntity(e, k1.ID, func(entity lattice.Entity) engine.Result {
			return engine.InterimResult{
				EP:        eoptionp.InterimUB{E: entity, K: k1.ID, UBv: intProp{kind: k1.ID, v: 0}},
				Dependees: []eoptionp.EOptionP{eoptionp.EPK{E: entity, K: k0.ID}},
				C: func(u eoptionp.EOptionP) any {
					return engine.FinalResult{EP: eoptionp.FinalEP{E: entity, K: k1.ID, P: intProp{kind: k1.ID, v: finalInt(u) + 10}}}
				},
			}
		}); err != nil {
			return err
		}
		// K1 passes through an interim value before its final, so A2's
		// continuation can be woken with that interim; it then keeps waiting
		// on K1 instead of finalizing K2 from a non-final K1.
		var waitK1 epkstate.Continuation
		waitK1 = func(u eoptionp.EOptionP) any {
			if !u.IsFinal() {
				return engine.InterimPartialResult{
					Key:       epkstate.Key{E: e, K: k2.ID},
					Dependees: []eoptionp.EOptionP{u},
					C:         waitK1,
				}
			}
			return engine.FinalResult{EP: eoptionp.FinalEP{E: e, K: k2.ID, P: intProp{kind: k2.ID, v: finalInt(u) * 2}}}
		}
		return store.ScheduleEagerComputationForEntity(e, k2.ID, func(entity lattice.Entity) engine.Result {
			return engine.InterimResult{
				EP:        eoptionp.InterimUB{E: entity, K: k2.ID, UBv: intProp{kind: k2.ID, v: 0}},
				Dependees: []eoptionp.EOptionP{eoptionp.EPK{E: entity, K: k1.ID}},
				C:         waitK1,
			}
		})
	})
	return outcome, e, k0.ID, k1.ID, k2.ID, err
}
