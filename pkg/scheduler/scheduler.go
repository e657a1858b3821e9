package scheduler

import (
	"context"
	"fmt"

	"github.com/fpcfgo/fpcf/internal/fpcferrors"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// Scheduler orders a set of registered analysis manifests into phases
// and drives a Store through them (§4.5).
type Scheduler struct {
	reg      *lattice.Registry
	workers  int
	debug    bool
	suppress propertystore.SuppressionMatrix
	byID     map[AnalysisID]*Manifest
	order    []AnalysisID
}

// New creates a Scheduler. workers and debug are the defaults passed to
// every phase's PhaseConfig; suppress is the suppression matrix shared by
// every phase (§4.3's matrix is a property of the whole analysis
// configuration, not of any one phase).
func New(reg *lattice.Registry, workers int, debug bool, suppress propertystore.SuppressionMatrix) *Scheduler {
	return &Scheduler{
		reg:      reg,
		workers:  workers,
		debug:    debug,
		suppress: suppress,
		byID:     make(map[AnalysisID]*Manifest),
	}
}

// Register adds a manifest. Duplicate IDs are a Configuration error.
func (s *Scheduler) Register(m Manifest) error {
	if _, exists := s.byID[m.ID]; exists {
		return fpcferrors.Newf(fpcferrors.Configuration, "analysis %q already registered", m.ID)
	}
	mCopy := m
	s.byID[m.ID] = &mCopy
	s.order = append(s.order, m.ID)
	return nil
}

// phaseKinds unions the property kinds every manifest in a phase declares
// itself responsible for, so the engine's fallback and cycle resolution
// at that phase's quiescence never finalizes a kind owned by a later
// phase just because this phase went idle.
func phaseKinds(byID map[AnalysisID]*Manifest, ids []AnalysisID) []lattice.KindID {
	var kinds []lattice.KindID
	for _, id := range ids {
		m := byID[id]
		kinds = append(kinds, m.DerivesEagerly...)
		kinds = append(kinds, m.DerivesLazily...)
		kinds = append(kinds, m.DerivesCollaboratively...)
	}
	return kinds
}

// Phases computes the phase order without running anything: one []AnalysisID
// per phase, in the order phases must run. Manifests in a mutual-uses
// cycle land in the same phase together.
func (s *Scheduler) Phases() [][]AnalysisID {
	b := NewGraphBuilder[AnalysisID]()
	for _, id := range s.order {
		b.EnsureNode(id)
		for _, used := range s.byID[id].Uses {
			b.AddEdge(id, used)
		}
	}
	return b.Build().StronglyConnectedComponents()
}

// Run executes every registered manifest's lifecycle against store, in
// phase order, and returns each phase's result. It stops (without error)
// after the first cancelled phase; a lifecycle callback returning an
// error aborts the run immediately with that error.
func (s *Scheduler) Run(ctx context.Context, store *propertystore.Store) ([]propertystore.PhaseResult, error) {
	for _, id := range s.order {
		m := s.byID[id]
		if m.Init != nil {
			if err := m.Init(store); err != nil {
				return nil, fmt.Errorf("analysis %q Init: %w", id, err)
			}
		}
	}

	phases := s.Phases()
	results := make([]propertystore.PhaseResult, 0, len(phases))

	for i, ids := range phases {
		for _, id := range ids {
			m := s.byID[id]
			if m.BeforeSchedule != nil {
				if err := m.BeforeSchedule(store); err != nil {
					return results, fmt.Errorf("analysis %q BeforeSchedule: %w", id, err)
				}
			}
		}

		for _, id := range ids {
			m := s.byID[id]
			if m.Start != nil {
				if err := m.Start(store); err != nil {
					return results, fmt.Errorf("analysis %q Start: %w", id, err)
				}
			}
		}

		cfg := propertystore.PhaseConfig{
			Name:     fmt.Sprintf("phase-%d", i),
			Workers:  s.workers,
			Debug:    s.debug,
			Suppress: s.suppress,
			Kinds:    phaseKinds(s.byID, ids),
		}
		if err := store.SetupPhase(ctx, cfg); err != nil {
			return results, fmt.Errorf("phase %d SetupPhase: %w", i, err)
		}

		for _, id := range ids {
			m := s.byID[id]
			if m.AfterPhaseScheduling != nil {
				if err := m.AfterPhaseScheduling(store); err != nil {
					return results, fmt.Errorf("analysis %q AfterPhaseScheduling: %w", id, err)
				}
			}
		}

		result := store.WaitOnPhaseCompletion()
		results = append(results, result)

		for _, id := range ids {
			m := s.byID[id]
			if m.AfterPhaseCompletion != nil {
				if err := m.AfterPhaseCompletion(store, result); err != nil {
					return results, fmt.Errorf("analysis %q AfterPhaseCompletion: %w", id, err)
				}
			}
		}

		if result.Cancelled {
			break
		}
	}
	return results, nil
}
