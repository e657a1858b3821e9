package eoptionp

import "github.com/fpcfgo/fpcf/pkg/lattice"

// IsUpdated reports whether newer is strictly more informative than older
// under kind's lattice — the per-kind `isUpdated` predicate §4.1 requires.
// A final value is always more informative than any non-final one; among
// two non-final values, newer counts as an update if it carries a bound
// older lacked, if its lower bound is not LessEq the old one, or if its
// upper bound differs from the old one. The direction of an upper-bound
// change is not checked here, and a bound that regresses alongside one
// that changes is not rejected; CheckValidTransition catches those in
// debug mode.
func IsUpdated(kind *lattice.Kind, newer, older EOptionP) bool {
	if older.IsFinal() {
		// Per-state invariant: a final value may never be updated. Callers
		// (EPKState.update) treat this as a precondition violation rather
		// than calling IsUpdated at all; this branch only guards against
		// accidental misuse and reports "not updated" defensively.
		return false
	}
	if newer.IsFinal() {
		return true
	}
	if older.IsEPK() {
		return !newer.IsEPK()
	}
	if newer.IsEPK() {
		return false
	}

	oldLB, hasOldLB := older.LB()
	newLB, hasNewLB := newer.LB()
	oldUB, hasOldUB := older.UB()
	newUB, hasNewUB := newer.UB()

	tightened := false

	if hasNewLB {
		if !hasOldLB {
			tightened = true
		} else if !kind.LessEq(newLB, oldLB) {
			// The new lower bound isn't even below the old one: it must be
			// strictly greater (monotone), otherwise this isn't an update
			// under this kind's partial order at all.
			if !kind.Equal(newLB, oldLB) {
				tightened = true
			}
		}
	}

	if hasNewUB {
		if !hasOldUB {
			tightened = true
		} else if !kind.Equal(newUB, oldUB) {
			tightened = true
		}
	}

	return tightened
}

// CheckValidTransition runs the kind's debug-mode monotonicity check
// (§4.1, §7) across whichever bounds both older and newer carry, returning
// a descriptive error on violation. Used only when the store runs with
// debug mode enabled.
func CheckValidTransition(kind *lattice.Kind, older, newer EOptionP) error {
	if oldUB, ok := older.UB(); ok {
		if newUB, ok2 := newer.UB(); ok2 {
			if err := kind.CheckIsValidNarrowing(oldUB, newUB); err != nil {
				return err
			}
		}
	}
	if oldLB, ok := older.LB(); ok {
		if newLB, ok2 := newer.LB(); ok2 {
			if err := kind.CheckIsValidUpdate(oldLB, newLB); err != nil {
				return err
			}
		}
	}
	return nil
}
