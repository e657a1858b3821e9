package propertystore

import (
	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/internal/fpcferrors"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// SuppressionMatrix is the 2-D table from §4.3: SuppressionMatrix[depender][dependee]
// reports whether interim updates to dependee should be withheld from
// depender. Absent entries default to false (not suppressed). Suppression
// never applies to final updates.
type SuppressionMatrix map[lattice.KindID]map[lattice.KindID]bool

// PhaseConfig configures one analysis phase: how many workers process its
// queue, whether debug-mode invariant checking is on, and its suppression
// matrix.
type PhaseConfig struct {
	Name     string
	Workers  int
	Debug    bool
	Suppress SuppressionMatrix

	// Kinds lists the property kinds this phase's analyses derive. Fallback
	// and cycle resolution at quiescence are restricted to these kinds, so
	// an entity touched speculatively under a kind owned by a later phase
	// is never finalized to its fallback before that phase runs. Leave
	// empty for a standalone, single-phase store (resolution then applies
	// to every known state, as there is no later phase to protect).
	Kinds []lattice.KindID
}

// Validate rejects, as a Configuration error, a suppression matrix that
// references a kind the registry does not know about. Called by
// SetupPhase before any computation runs.
func (c PhaseConfig) Validate(reg *lattice.Registry) error {
	for depender, row := range c.Suppress {
		if _, ok := reg.Kind(depender); !ok {
			return fpcferrors.Newf(fpcferrors.Configuration, "suppression matrix references unregistered depender kind %d", depender)
		}
		for dependee := range row {
			if _, ok := reg.Kind(dependee); !ok {
				return fpcferrors.Newf(fpcferrors.Configuration, "suppression matrix references unregistered dependee kind %d", dependee)
			}
		}
	}
	return nil
}

func (c PhaseConfig) suppressor() engine.Suppressor {
	return func(dependerKind, dependeeKind lattice.KindID) bool {
		row, ok := c.Suppress[dependerKind]
		if !ok {
			return false
		}
		return row[dependeeKind]
	}
}

// PhaseResult summarizes a completed phase: every analysis failure
// recorded by the engine, and whether the phase ended by cancellation
// rather than natural quiescence.
type PhaseResult struct {
	Name      string
	Failures  []engine.AnalysisFailure
	Cancelled bool
}

// Ok reports whether the phase completed cleanly: not cancelled and with
// no recorded analysis failures.
func (r PhaseResult) Ok() bool { return !r.Cancelled && len(r.Failures) == 0 }
