// Package demoanalyses wires up the six literal scenarios from §8 as small, runnable analyses over a uuid-keyed entity universe. Each
// scenario builds its own registry and store, schedules its analyses, runs
// one phase to completion, and returns the resulting Outcome for a caller
// (the cmd/fpcf demo CLI, or this package's own tests) to inspect. None of
// these scenarios depend on pkg/scheduler: each is a single phase, so they
// drive propertystore.Store directly.
package demoanalyses

import (
	"context"

	"github.com/fpcfgo/fpcf/internal/fpcflog"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// Outcome is what a scenario hands back once its one phase settles.
type Outcome struct {
	Store  *propertystore.Store
	Reg    *lattice.Registry
	Result propertystore.PhaseResult
}

// runSinglePhase is the shared skeleton every scenario below uses: build a
// store over reg, run schedule against it, then wait for the one phase it
// produces to settle.
func runSinglePhase(ctx context.Context, reg *lattice.Registry, workers int, cfg propertystore.PhaseConfig, schedule func(*propertystore.Store) error) (Outcome, error) {
	store := propertystore.New(reg, fpcflog.Discard(), workers)
	if err := schedule(store); err != nil {
		return Outcome{}, err
	}
	if err := store.SetupPhase(ctx, cfg); err != nil {
		return Outcome{}, err
	}
	result := store.WaitOnPhaseCompletion()
	return Outcome{Store: store, Reg: reg, Result: result}, nil
}

// intProp is the lattice.Property used by the integer-valued scenarios
// (linear chain, cancellation at scale): a bare int ordered the usual way,
// joined by max.
type intProp struct {
	kind lattice.KindID
	v    int
}

func (p intProp) Kind() lattice.KindID { return p.kind }

func intJoin(a, b lattice.Property) lattice.Property {
	if a.(intProp).v >= b.(intProp).v {
		return a
	}
	return b
}

func intLessEq(a, b lattice.Property) bool {
	return a.(intProp).v <= b.(intProp).v
}

func finalInt(e eoptionp.EOptionP) int {
	p, _ := e.UB()
	return p.(intProp).v
}
