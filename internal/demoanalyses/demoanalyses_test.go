package demoanalyses

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestLinearChainConverges(t *testing.T) {
	outcome, e, k0, k1, k2, err := LinearChain(context.Background(), 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Ok()))

	v0, err := outcome.Store.Apply(e, k0)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v0.IsFinal()))
	p0, _ := v0.UB()
	qt.Assert(t, qt.Equals(p0.(intProp).v, 1))

	v1, err := outcome.Store.Apply(e, k1)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v1.IsFinal()))
	p1, _ := v1.UB()
	qt.Assert(t, qt.Equals(p1.(intProp).v, 11))

	v2, err := outcome.Store.Apply(e, k2)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v2.IsFinal()))
	p2, _ := v2.UB()
	qt.Assert(t, qt.Equals(p2.(intProp).v, 22))
}

func TestJoinAccumulatesBothContributions(t *testing.T) {
	outcome, e, k, err := Join(context.Background(), 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Ok()))

	v, err := outcome.Store.Apply(e, k)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.IsFinal()))
	p, _ := v.UB()
	qt.Assert(t, qt.Equals(p.(stringSet).elems, "a,b"))
}

func TestCycleWithTighteningConvergesBothToMid(t *testing.T) {
	outcome, e1, e2, k, err := CycleWithTightening(context.Background(), 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Ok()))

	v1, err := outcome.Store.Apply(e1, k)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v1.IsFinal()))
	p1, _ := v1.UB()
	qt.Assert(t, qt.Equals(p1.(level).v, levelMid))

	v2, err := outcome.Store.Apply(e2, k)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v2.IsFinal()))
	p2, _ := v2.UB()
	qt.Assert(t, qt.Equals(p2.(level).v, levelMid))
}

func TestSuppressionGatesInterimButWakesOnFinal(t *testing.T) {
	outcome, err := Suppression(context.Background(), 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Ok()))
	qt.Assert(t, qt.Equals(outcome.DependerWakeCount, 1))
}

func TestFallbackInstalledForNeverProducedEntity(t *testing.T) {
	outcome, m, kind, err := Fallback(context.Background(), 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Ok()))

	v, err := outcome.Store.Apply(m, kind)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v.IsFinal()))
	p, _ := v.UB()
	qt.Assert(t, qt.Equals(p.(exceptionProp).name, "SomeException"))
}

func TestCancellationAtScaleStopsWellShortOfAllEntities(t *testing.T) {
	outcome, _, finals, err := CancellationAtScale(context.Background(), 8)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(outcome.Result.Cancelled))
	qt.Assert(t, qt.IsTrue(finals >= 100))
	qt.Assert(t, qt.IsTrue(finals < 10000))
}
