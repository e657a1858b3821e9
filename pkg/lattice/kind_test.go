package lattice_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// level is a tiny three-point lattice, Bot < Mid < Top, used throughout
// this module's tests (it is literally the lattice from scenario 3 in
// §8).
type level int

const (
	bot level = iota
	mid
	top
)

func (l level) Kind() lattice.KindID { return 0 }

func levelJoin(a, b lattice.Property) lattice.Property {
	la, lb := a.(level), b.(level)
	if la > lb {
		return la
	}
	return lb
}

func levelLessEq(a, b lattice.Property) bool {
	return a.(level) <= b.(level)
}

func TestRegistryAssignsDenseIDs(t *testing.T) {
	r := lattice.NewRegistry()
	k0 := r.MustRegister("K0", bot, levelJoin, levelLessEq)
	k1 := r.MustRegister("K1", bot, levelJoin, levelLessEq)

	qt.Assert(t, qt.Equals(k0.ID, lattice.KindID(0)))
	qt.Assert(t, qt.Equals(k1.ID, lattice.KindID(1)))
	qt.Assert(t, qt.Equals(len(r.Kinds()), 2))
}

func TestRegistryDuplicateNameIsConfigurationError(t *testing.T) {
	r := lattice.NewRegistry()
	_, err := r.Register("K", bot, levelJoin, levelLessEq)
	qt.Assert(t, qt.IsNil(err))

	_, err = r.Register("K", bot, levelJoin, levelLessEq)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestJoinLaws(t *testing.T) {
	// join(p, p) = p; commutative; associative — the round-trip laws of §8.
	for _, p := range []level{bot, mid, top} {
		qt.Assert(t, qt.Equals(levelJoin(p, p), p))
	}
	qt.Assert(t, qt.Equals(levelJoin(bot, top), levelJoin(top, bot)))
	ab := levelJoin(bot, mid)
	qt.Assert(t, qt.Equals(levelJoin(ab, top), levelJoin(bot, levelJoin(mid, top))))
}

func TestCheckIsValidUpdateRejectsNonMonotone(t *testing.T) {
	k := &lattice.Kind{Name: "Level", LessEq: levelLessEq}

	qt.Assert(t, qt.IsNil(k.CheckIsValidUpdate(bot, top)))
	qt.Assert(t, qt.IsNil(k.CheckIsValidUpdate(mid, mid)))
	qt.Assert(t, qt.IsNotNil(k.CheckIsValidUpdate(top, mid)))
}

func TestResolverDefaultsToPromoteUBToFinal(t *testing.T) {
	k := &lattice.Kind{Name: "Level"}
	qt.Assert(t, qt.Equals(k.Resolver()(top), lattice.Property(top)))

	called := false
	k.CycleResolver = func(ub lattice.Property) lattice.Property {
		called = true
		return bot
	}
	qt.Assert(t, qt.Equals(k.Resolver()(top), lattice.Property(bot)))
	qt.Assert(t, qt.IsTrue(called))
}
