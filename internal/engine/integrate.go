package engine

import (
	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/internal/fpcferrors"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
)

// integrate dispatches a Result to its handler per §4.3's taxonomy. It
// runs on a worker goroutine, inside runItem's panic guard.
func (e *Engine) integrate(r Result) {
	switch v := r.(type) {
	case nil:
		return
	case NoResult:
		return
	case FinalResult:
		e.processFinal(v.EP)
	case Results:
		for _, sub := range v.Of {
			e.integrate(sub)
		}
	case MultiResult:
		for _, f := range v.Of {
			e.processFinal(f.EP)
		}
	case InterimResult:
		e.processInterim(v)
	case PartialResult:
		e.processPartial(v)
	case InterimPartialResult:
		e.processInterimPartial(v)
	default:
		panic(fpcferrors.Newf(fpcferrors.Fatal, "engine: unknown result type %T", r))
	}
}

func (e *Engine) mustState(key epkstate.Key) *epkstate.State {
	st, err := e.GetOrCreate(key)
	if err != nil {
		panic(err)
	}
	return st
}

func (e *Engine) processFinal(final eoptionp.FinalEP) {
	key := keyOf(final)
	st := e.mustState(key)
	out := st.FinalUpdate(final)
	if !out.Applied {
		return
	}
	e.checkDebugTransition(st, out.Old, final)
	e.notifyDependers(key, out.ToNotify, final)
	e.fireFirstAttach(key, out.Old, final)
}

func (e *Engine) processInterim(r InterimResult) {
	key := keyOf(r.EP)
	st := e.mustState(key)

	dependeeKeys := make([]epkstate.Key, len(r.Dependees))
	for i, d := range r.Dependees {
		dependeeKeys[i] = keyOf(d)
	}

	out := st.Update(r.EP, r.C, dependeeKeys, epkstate.Suppressor(e.suppress))
	if !out.Applied {
		return
	}
	e.checkDebugTransition(st, out.Old, r.EP)
	e.notifyDependers(key, out.ToNotify, st.Current())
	e.fireFirstAttach(key, out.Old, r.EP)
	e.registerDependees(key, st, r.Dependees)
}

func (e *Engine) processPartial(r PartialResult) {
	st := e.mustState(r.Key)
	out := st.UpdatePartial(r.Update, epkstate.Suppressor(e.suppress))
	if !out.Applied {
		return
	}
	e.checkDebugTransition(st, out.Old, st.Current())
	e.notifyDependers(r.Key, out.ToNotify, st.Current())
	e.fireFirstAttach(r.Key, out.Old, st.Current())
}

// fireFirstAttach invokes the onFirstAttach hook exactly once per
// (entity,kind): the instant its state leaves the bare EPK shape, whatever
// value (interim or final) it lands in, per §4.4/§6's "fires when the
// first value, of any shape, is attached" contract for triggered
// computations.
func (e *Engine) fireFirstAttach(key epkstate.Key, old, current eoptionp.EOptionP) {
	if e.onFirstAttach != nil && old.IsEPK() {
		e.onFirstAttach(key, current)
	}
}

// checkDebugTransition runs the kind's debug-mode monotonicity check (§4.1,
// §7) and panics with a Fatal error on violation. A no-op unless the
// current phase was started by RunPhase with debug enabled, since it costs
// a LessEq call per bound on every accepted update.
func (e *Engine) checkDebugTransition(st *epkstate.State, older, newer eoptionp.EOptionP) {
	if !e.debug {
		return
	}
	if err := eoptionp.CheckValidTransition(st.Kind(), older, newer); err != nil {
		panic(fpcferrors.Wrapf(fpcferrors.Fatal, err, "non-monotone update for %v", st.Key()))
	}
}

func (e *Engine) processInterimPartial(r InterimPartialResult) {
	st := e.mustState(r.Key)
	dependeeKeys := make([]epkstate.Key, len(r.Dependees))
	for i, d := range r.Dependees {
		dependeeKeys[i] = keyOf(d)
	}
	if !st.AttachContinuation(r.C, dependeeKeys) {
		return
	}
	e.registerDependees(r.Key, st, r.Dependees)
}

// registerDependees attempts the addDepender compare-and-set on every
// dependee a continuation just registered for (§4.3 step 3). A dependee
// that already moved past the observed snapshot fires the continuation
// immediately instead of silently losing the update that raced it.
func (e *Engine) registerDependees(dependerKey epkstate.Key, depender *epkstate.State, observed []eoptionp.EOptionP) {
	for _, d := range observed {
		dk := keyOf(d)
		depState := e.mustState(dk)

		ok, current := depState.AddDepender(d, dependerKey, false)
		if ok {
			continue
		}
		if c, ok := depender.PrepareInvokeC(dk); ok {
			e.enqueue(func(eng *Engine) { eng.integrate(c(current)) })
		}
	}
}
