package propertystore

import (
	"context"
	"sync"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/internal/fpcferrors"
	"github.com/fpcfgo/fpcf/internal/fpcflog"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// Store is the property store façade (§4.4): the one type analyses and
// drivers touch directly. It owns the kind registry and a single
// internal/engine.Engine for its whole lifetime, so a later phase's
// analyses can Apply/Force an earlier phase's finalized properties;
// SetupPhase only resets that Engine's per-phase machinery (queue,
// worker pool, cancellation, failures), never its EPKState universe.
type Store struct {
	reg     *lattice.Registry
	logger  fpcflog.Logger
	workers int

	eng *engine.Engine

	mu        sync.Mutex
	lazy      map[lattice.KindID]ComputationFunc
	triggered map[lattice.KindID][]ComputationFunc
	eager     []eagerTask
	lazyTried map[epkstate.Key]bool
	phase     PhaseConfig
	done      chan struct{}
	running   bool
}

// New creates a Store over reg. workers is the default worker pool size
// for phases that do not override PhaseConfig.Workers; logger is kept by
// the store and handed to its engine, defaulting to a discard logger if
// nil. Neither currently writes anything to it.
func New(reg *lattice.Registry, logger fpcflog.Logger, workers int) *Store {
	if logger == nil {
		logger = fpcflog.Discard()
	}
	if workers < 1 {
		workers = 1
	}
	s := &Store{
		reg:       reg,
		logger:    logger,
		workers:   workers,
		lazy:      make(map[lattice.KindID]ComputationFunc),
		triggered: make(map[lattice.KindID][]ComputationFunc),
		lazyTried: make(map[epkstate.Key]bool),
	}
	s.eng = engine.New(reg, workers, logger, false)
	s.eng.SetOnFirstAttach(s.fireTriggered)
	return s
}

// RegisterLazyPropertyComputation installs fn as the on-demand producer
// for kind: the first Apply or Force of an entity with no existing value
// under kind schedules fn(e) automatically. Registering a second lazy
// producer for the same kind is a Configuration error (§4.4: "duplicate
// lazy producer" is a named invariant violation).
func (s *Store) RegisterLazyPropertyComputation(kind lattice.KindID, fn ComputationFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lazy[kind]; exists {
		return fpcferrors.Newf(fpcferrors.Configuration, "lazy property computation already registered for kind %d", kind)
	}
	s.lazy[kind] = fn
	return nil
}

// RegisterTriggeredComputation installs fn to run for entity e the first
// time e's property of kind is given a value of any shape (interim or
// final) — i.e. fn observes, once each, every entity that ever gets a
// value of kind, without the caller having to wire up its own dependency
// edges for it.
func (s *Store) RegisterTriggeredComputation(kind lattice.KindID, fn ComputationFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggered[kind] = append(s.triggered[kind], fn)
}

// ScheduleEagerComputationForEntity queues fn to run for e as soon as the
// phase starts. Must be called before SetupPhase.
func (s *Store) ScheduleEagerComputationForEntity(e lattice.Entity, kind lattice.KindID, fn ComputationFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fpcferrors.Newf(fpcferrors.Fatal, "ScheduleEagerComputationForEntity called while a phase is running")
	}
	s.eager = append(s.eager, eagerTask{entity: e, kind: kind, fn: fn})
	return nil
}

// ScheduleEagerComputationsForEntities is ScheduleEagerComputationForEntity
// over a batch.
func (s *Store) ScheduleEagerComputationsForEntities(es []lattice.Entity, kind lattice.KindID, fn ComputationFunc) error {
	for _, e := range es {
		if err := s.ScheduleEagerComputationForEntity(e, kind, fn); err != nil {
			return err
		}
	}
	return nil
}

// SetupPhase validates cfg and starts the phase running in the
// background on the Store's one Engine: every previously scheduled eager
// computation is submitted immediately. Call WaitOnPhaseCompletion to
// block until it settles. A Store runs one phase at a time but may run
// many phases in sequence (the scheduler's job, §4.5): calling SetupPhase
// again is fine once the previous phase's WaitOnPhaseCompletion has
// returned. The Engine's EPKState universe survives across phases, so a
// later phase's analyses can Apply/Force an earlier phase's finalized
// properties; only the queue, worker pool, cancellation flag, and
// recorded failures reset per phase. Lazy and triggered computation
// registrations persist across phases too; eager schedules do not.
func (s *Store) SetupPhase(ctx context.Context, cfg PhaseConfig) error {
	if err := cfg.Validate(s.reg); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fpcferrors.Newf(fpcferrors.Fatal, "SetupPhase called while a previous phase is still running")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = s.workers
	}

	initial := make([]engine.Result, 0, len(s.eager))
	for _, task := range s.eager {
		initial = append(initial, task.fn(task.entity))
	}
	s.eager = nil
	s.phase = cfg
	s.running = true
	s.lazyTried = make(map[epkstate.Key]bool)
	done := make(chan struct{})
	s.done = done
	eng := s.eng
	s.mu.Unlock()

	go func() {
		eng.RunPhase(ctx, workers, cfg.suppressor(), cfg.Kinds, cfg.Debug, initial)
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()
	return nil
}

// fireTriggered is the engine's onFirstAttach hook: it submits a fresh
// computation for every triggered producer registered against kind, the
// first time any entity's property of that kind is given a value of any
// shape (interim or final), per §4.4/§6 — not only once it finalizes, so a
// dependent analysis can start making progress before the triggering
// property itself has settled.
func (s *Store) fireTriggered(key epkstate.Key, _ eoptionp.EOptionP) {
	s.mu.Lock()
	fns := s.triggered[key.K]
	s.mu.Unlock()
	for _, fn := range fns {
		s.eng.Submit(fn(key.E))
	}
}

// WaitOnPhaseCompletion blocks until the current phase reaches
// quiescence (after fallback and cycle resolution) or is cancelled, and
// reports what happened.
func (s *Store) WaitOnPhaseCompletion() PhaseResult {
	s.mu.Lock()
	done, name := s.done, s.phase.Name
	s.mu.Unlock()
	<-done
	return PhaseResult{Name: name, Failures: s.eng.Failures(), Cancelled: s.eng.Cancelled()}
}

// Cancel raises cancellation on the running phase.
func (s *Store) Cancel() {
	s.eng.Cancel()
}

// Apply returns the current extension of (e, kind), triggering the
// registered lazy computation (if any) the first time this entity's value
// under kind is observed still unset. Safe to call from outside the
// engine only before SetupPhase or from within a running computation.
func (s *Store) Apply(e lattice.Entity, kind lattice.KindID) (eoptionp.EOptionP, error) {
	return s.read(e, kind)
}

// Force is Apply's sibling for callers that need a value to exist even
// though nothing else depends on it yet (§4.4): in this implementation
// the two share the same lazy-triggering behavior.
func (s *Store) Force(e lattice.Entity, kind lattice.KindID) (eoptionp.EOptionP, error) {
	return s.read(e, kind)
}

func (s *Store) read(e lattice.Entity, kind lattice.KindID) (eoptionp.EOptionP, error) {
	eng := s.eng
	key := epkstate.Key{E: e, K: kind}
	st, err := eng.GetOrCreate(key)
	if err != nil {
		return nil, err
	}

	current := st.Current()
	if !current.IsEPK() {
		return current, nil
	}

	s.mu.Lock()
	fn, hasLazy := s.lazy[kind]
	tried := s.lazyTried[key]
	if hasLazy && !tried {
		s.lazyTried[key] = true
	}
	s.mu.Unlock()

	if hasLazy && !tried {
		eng.Submit(fn(e))
	}
	return st.Current(), nil
}

// Entities returns the entities that have ever had a state created for
// kind, across every phase run so far, regardless of whether they are
// final yet.
func (s *Store) Entities(kind lattice.KindID) []lattice.Entity {
	var out []lattice.Entity
	for _, st := range s.eng.States() {
		if st.Key().K == kind {
			out = append(out, st.Key().E)
		}
	}
	return out
}

// Registry returns the store's property kind registry.
func (s *Store) Registry() *lattice.Registry { return s.reg }
