package engine

import (
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// resolveFallbacksAndCycles scans every state belonging to this phase's
// kinds once: EPKs that never received a value get the kind's fallback;
// refinable interim states that survived quiescence (only possible via a
// dependency cycle, since otherwise their continuation would still be
// pending work) get their kind's CycleResolver applied to whichever bound
// they actually carry, promoting it to final by default (§4.3.b, §3's
// PromoteUBToFinal). Most shapes (InterimLUB, InterimUB) carry an upper
// bound and that is what gets promoted; a kind that only ever tracks a
// lower bound surfaces as InterimLB, which has no upper bound at all, so
// promotion falls back to its lower bound instead — otherwise an
// InterimLB-only kind could never be driven to a final value and the
// phase's completeness invariant (every reached (e,k) ends up final) would
// not hold. Reports whether it installed anything, so the caller knows
// whether another quiescence pass can make further progress.
//
// Scanning is restricted to e.phaseKinds rather than every state the
// Engine has ever created: the state map survives across phases (so a
// later phase's analyses can Apply an earlier phase's results), and an
// entity GetOrCreate'd under a kind that belongs to a not-yet-scheduled
// phase must not be prematurely finalized to its fallback just because
// the current phase went quiet.
func (e *Engine) resolveFallbacksAndCycles() bool {
	progressed := false
	for _, st := range e.states.snapshot() {
		if e.phaseKinds != nil && !e.phaseKinds[st.Key().K] {
			continue
		}
		cur := st.Current()
		if cur.IsFinal() {
			continue
		}

		kind := st.Kind()
		var resolved lattice.Property

		if cur.IsEPK() {
			resolved = kind.Fallback
		} else if ub, ok := cur.UB(); ok {
			resolved = kind.Resolver()(ub)
		} else if lb, ok := cur.LB(); ok {
			resolved = kind.Resolver()(lb)
		}
		if resolved == nil {
			continue
		}

		final := eoptionp.FinalEP{E: st.Key().E, K: st.Key().K, P: resolved}
		e.Submit(FinalResult{EP: final})
		progressed = true
	}
	return progressed
}
