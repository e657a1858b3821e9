package demoanalyses

import (
	"context"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// exceptionProp is the lattice.Property for the Fallback scenario's Throws
// kind: a named exception, with no meaningful join beyond "the one that
// was recorded" (there is only ever one producer here, or none).
type exceptionProp struct {
	kind lattice.KindID
	name string
}

func (p exceptionProp) Kind() lattice.KindID { return p.kind }

func exceptionJoin(a, b lattice.Property) lattice.Property { return b }

func exceptionLessEq(a, b lattice.Property) bool { return true }

// Fallback is scenario 5 (§8): kind Throws has fallback SomeException.
// Entity m is read (via Force, simulating a caller depending on a method
// it has no call-graph edge to) but no analysis ever produces Throws(m);
// at quiescence fallback resolution installs the kind's fallback as m's
// final value. Expected final: Throws(m)=SomeException.
func Fallback(ctx context.Context, workers int) (Outcome, lattice.Entity, lattice.KindID, error) {
	reg := lattice.NewRegistry()
	throws, err := reg.Register("Throws", exceptionProp{name: "SomeException"}, exceptionJoin, exceptionLessEq)
	if err != nil {
		return Outcome{}, nil, 0, err
	}
	m := uuid.New()

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name:  "fallback",
		Kinds: []lattice.KindID{throws.ID},
	}, func(store *propertystore.Store) error {
		_, err := store.Force(m, throws.ID)
		return err
	})
	return outcome, m, throws.ID, err
}
