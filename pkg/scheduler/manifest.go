package scheduler

import (
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// AnalysisID identifies one registered analysis in a scheduler run.
type AnalysisID string

// Manifest describes one analysis's scheduling requirements and
// lifecycle callbacks (§4.5). Uses lists the other analyses whose
// property kinds this one reads; the scheduler ensures those run in an
// earlier or the same phase. DerivesEagerly/DerivesLazily/
// DerivesCollaboratively declare which property kinds this analysis
// produces and how. The scheduler unions them into the phase's
// PhaseConfig.Kinds, which limits fallback and cycle resolution to those
// kinds; it does not validate them. The analysis itself is responsible
// for calling the matching Store.Schedule*/Register* method from Start.
type Manifest struct {
	ID   AnalysisID
	Uses []AnalysisID

	DerivesEagerly         []lattice.KindID
	DerivesLazily          []lattice.KindID
	DerivesCollaboratively []lattice.KindID

	// Init runs once per manifest before any phase starts, in manifest
	// registration order. Typically registers lazy/triggered computations.
	Init func(store *propertystore.Store) error

	// BeforeSchedule runs once per manifest immediately before its phase's
	// SetupPhase, after every earlier phase has completed.
	BeforeSchedule func(store *propertystore.Store) error

	// Start runs once per manifest, after BeforeSchedule but before its
	// phase's SetupPhase: this is where eager computations are scheduled
	// (ScheduleEagerComputationForEntity) and where an analysis reads an
	// earlier phase's finalized properties via Apply/Force to seed its
	// own. Scheduling here, before the phase's engine starts running,
	// guarantees every manifest's eager work is present in the phase's
	// first batch rather than racing the phase's own quiescence.
	Start func(store *propertystore.Store) error

	// AfterPhaseScheduling runs once per phase, after SetupPhase has
	// submitted every manifest's scheduled work to the running engine,
	// before the phase's WaitOnPhaseCompletion.
	AfterPhaseScheduling func(store *propertystore.Store) error

	// AfterPhaseCompletion runs once per manifest after its phase
	// completes, receiving the phase's result.
	AfterPhaseCompletion func(store *propertystore.Store, result propertystore.PhaseResult) error
}
