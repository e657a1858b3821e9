package eoptionp_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

type level int

const (
	bot level = iota
	mid
	top
)

func (l level) Kind() lattice.KindID { return 0 }

func levelLessEq(a, b lattice.Property) bool { return a.(level) <= b.(level) }

var levelKind = &lattice.Kind{Name: "Level", LessEq: levelLessEq}

type entity string

func TestEPKIsNotFinalAndCarriesNoBounds(t *testing.T) {
	e := eoptionp.EPK{E: entity("e1"), K: 0}
	qt.Assert(t, qt.IsTrue(e.IsEPK()))
	qt.Assert(t, qt.IsFalse(e.IsFinal()))
	_, ok := e.LB()
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = e.UB()
	qt.Assert(t, qt.IsFalse(ok))
}

func TestFinalEPIsItsOwnBounds(t *testing.T) {
	f := eoptionp.FinalEP{E: entity("e1"), K: 0, P: top}
	qt.Assert(t, qt.IsTrue(f.IsFinal()))
	lb, ok := f.LB()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lb, lattice.Property(top)))
	ub, ok := f.UB()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ub, lattice.Property(top)))
}

func TestIsUpdatedFromEPKToInterim(t *testing.T) {
	e := entity("e1")
	epk := eoptionp.EPK{E: e, K: 0}
	interim := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	qt.Assert(t, qt.IsTrue(eoptionp.IsUpdated(levelKind, interim, epk)))
	qt.Assert(t, qt.IsFalse(eoptionp.IsUpdated(levelKind, epk, interim)))
}

func TestIsUpdatedNoOpOnEqualInterim(t *testing.T) {
	e := entity("e1")
	a := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	b := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	qt.Assert(t, qt.IsFalse(eoptionp.IsUpdated(levelKind, b, a)))
}

func TestIsUpdatedOnTighterUB(t *testing.T) {
	e := entity("e1")
	loose := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	tight := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: mid}
	qt.Assert(t, qt.IsTrue(eoptionp.IsUpdated(levelKind, tight, loose)))
}

func TestIsUpdatedToFinalAlwaysTrue(t *testing.T) {
	e := entity("e1")
	interim := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	final := eoptionp.FinalEP{E: e, K: 0, P: top}
	qt.Assert(t, qt.IsTrue(eoptionp.IsUpdated(levelKind, final, interim)))
}

func TestIsUpdatedRejectsUpdatingAFinal(t *testing.T) {
	e := entity("e1")
	final := eoptionp.FinalEP{E: e, K: 0, P: top}
	other := eoptionp.FinalEP{E: e, K: 0, P: mid}
	qt.Assert(t, qt.IsFalse(eoptionp.IsUpdated(levelKind, other, final)))
}

func TestCheckValidTransitionCatchesUBWideningRegression(t *testing.T) {
	e := entity("e1")
	tight := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: mid}
	widened := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	// ub went from mid back up to top: an upper bound must only narrow.
	err := eoptionp.CheckValidTransition(levelKind, tight, widened)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestCheckValidTransitionAcceptsUBNarrowing(t *testing.T) {
	e := entity("e1")
	loose := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: top}
	tight := eoptionp.InterimLUB{E: e, K: 0, LBv: bot, UBv: mid}
	err := eoptionp.CheckValidTransition(levelKind, loose, tight)
	qt.Assert(t, qt.IsNil(err))
}
