package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/internal/fpcferrors"
	"github.com/fpcfgo/fpcf/internal/fpcflog"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// Suppressor decides whether updates to dependeeKind should be suppressed
// for dependers of dependerKind, per the phase's 2-D suppression matrix
// (§4.3). It is supplied by the façade/scheduler at SetupPhase time.
type Suppressor func(dependerKind, dependeeKind lattice.KindID) bool

// workItem is one unit of work the queue discipline processes: "a shared
// FIFO queue of (continuation, dependee-eOptionP) pairs" (§4.3)
// generalized slightly to also carry freshly produced Results, since both
// shapes go through the same mutex-guarded queue that every worker pulls
// from.
type workItem func(e *Engine)

// AnalysisFailure records one analysis computation's panic, captured per
// worker per §7 ("Analysis errors... captured per worker and surfaced via
// the façade after completion").
type AnalysisFailure struct {
	Key   epkstate.Key
	Err   error
	Panic any
}

// Engine is the dependency graph & update engine: it owns the state map,
// the work queue, the worker pool, and the fallback/cycle-resolution
// machinery that runs once the pool goes idle. Its EPKState universe
// (states) survives across phases; RunPhase may be called more than once
// on the same Engine, each time with a fresh queue, worker pool, and
// cancellation flag, so a later phase's analyses can still Apply/Force
// an earlier phase's finalized properties.
type Engine struct {
	reg            *lattice.Registry
	states         *stateMap
	defaultWorkers int
	logger         fpcflog.Logger
	debug          bool

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []workItem
	live   int  // work items queued or currently being processed
	closed bool // this round's workers should exit once the queue drains

	suppress   Suppressor
	phaseKinds map[lattice.KindID]bool // nil means "unrestricted": every kind participates
	cancelled  atomic.Bool

	failuresMu sync.Mutex
	failures   []AnalysisFailure

	wg sync.WaitGroup

	// onFirstAttach, if set, is invoked synchronously the first time a
	// state moves off its initial EPK shape, whatever shape it lands in
	// (interim or final). It lets the façade implement triggered
	// computations without the engine knowing anything about that concept
	// itself: §4.4/§6 specify a triggered computation fires "when the first
	// value, of any shape, is attached to a state of kind k for any
	// entity", not only on that state's eventual final.
	onFirstAttach func(epkstate.Key, eoptionp.EOptionP)
}

// New creates an Engine over a fresh EPKState universe. defaultWorkers is
// used by RunPhase when a phase does not request its own worker count.
func New(reg *lattice.Registry, defaultWorkers int, logger fpcflog.Logger, debug bool) *Engine {
	if defaultWorkers < 1 {
		defaultWorkers = 1
	}
	if logger == nil {
		logger = fpcflog.Discard()
	}
	e := &Engine{
		reg:            reg,
		states:         newStateMap(),
		defaultWorkers: defaultWorkers,
		logger:         logger,
		debug:          debug,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// SetOnFirstAttach installs the first-attach hook used to implement
// triggered computations. Safe to call between phases, before RunPhase.
func (e *Engine) SetOnFirstAttach(f func(epkstate.Key, eoptionp.EOptionP)) {
	e.onFirstAttach = f
}

// GetOrCreate returns the state for key, creating a fresh EPK if absent.
// Any key that ever passes through here is "reachable" and therefore
// subject to fallback installation at quiescence (§4.3.a).
func (e *Engine) GetOrCreate(key epkstate.Key) (*epkstate.State, error) {
	kind, ok := e.reg.Kind(key.K)
	if !ok {
		return nil, fpcferrors.Newf(fpcferrors.Fatal, "read of unregistered property kind %d for entity %v", key.K, key.E)
	}
	st, _ := e.states.getOrCreate(key, kind)
	return st, nil
}

// Lookup returns the existing state for key without creating one.
func (e *Engine) Lookup(key epkstate.Key) (*epkstate.State, bool) {
	return e.states.get(key)
}

// RunPhase runs one phase to completion: it resets the queue,
// cancellation flag, and recorded failures, launches workers workers (or
// the Engine's default if workers < 1) under suppress, submits initial,
// waits for quiescence, then repeatedly applies fallback values and cycle
// resolution until no refinable state remains (§4.3.b), before shutting
// the round's workers down. It blocks until the phase is fully resolved
// or cancelled.
//
// kinds restricts fallback/cycle resolution to states whose key belongs
// to this phase's property kinds; an empty kinds leaves resolution
// unrestricted (every known state is a candidate), which is what a
// single-phase run wants. A multi-phase scheduler passes the kinds this
// phase's analyses actually derive, so an entity read speculatively
// under a future phase's kind is never finalized to its fallback early.
//
// debug enables this phase's debug-mode invariant checking (§4.1, §7):
// every accepted update is run through the kind's CheckIsValidUpdate and
// CheckIsValidNarrowing, panicking with a Fatal error the instant some
// analysis violates monotonicity. Without it such an update stands, since
// IsUpdated accepts any change of an upper bound. Off by default, since it is an extra
// LessEq call per bound on every accepted update.
func (e *Engine) RunPhase(ctx context.Context, workers int, suppress Suppressor, kinds []lattice.KindID, debug bool, initial []Result) {
	if workers < 1 {
		workers = e.defaultWorkers
	}

	var phaseKinds map[lattice.KindID]bool
	if len(kinds) > 0 {
		phaseKinds = make(map[lattice.KindID]bool, len(kinds))
		for _, k := range kinds {
			phaseKinds[k] = true
		}
	}

	e.mu.Lock()
	e.queue = nil
	e.live = 0
	e.closed = false
	e.suppress = suppress
	e.phaseKinds = phaseKinds
	e.debug = debug
	e.mu.Unlock()
	e.cancelled.Store(false)
	e.failuresMu.Lock()
	e.failures = nil
	e.failuresMu.Unlock()
	if ctx.Err() != nil {
		// A phase started under an already-cancelled context never runs any
		// work: it still drains whatever initial is submitted below, per
		// §5's "queue drained, nothing executed" cancellation contract.
		e.Cancel()
	}

	e.start(ctx, workers)
	for _, r := range initial {
		e.Submit(r)
	}
	e.WaitForQuiescence()

	for !e.Cancelled() {
		progressed := e.resolveFallbacksAndCycles()
		if !progressed {
			break
		}
		e.WaitForQuiescence()
	}
	e.stop()
}

func (e *Engine) start(ctx context.Context, workers int) {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			e.workerLoop(ctx)
			return nil
		})
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_ = g.Wait()
	}()
}

// stop signals this round's workers to exit once the queue drains, then
// blocks until they have.
func (e *Engine) stop() {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()
	e.wg.Wait()
}

// Cancel raises the phase-level cancellation flag (§5, §7). Cooperative:
// workers finish their in-flight unit, then stop picking up new work and
// drain the rest of the queue without executing it.
func (e *Engine) Cancel() {
	e.cancelled.Store(true)
	e.mu.Lock()
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Cancelled reports whether the current (or just-finished) phase has
// been cancelled.
func (e *Engine) Cancelled() bool { return e.cancelled.Load() }

// Submit enqueues a Result produced outside any continuation (an eagerly
// or lazily scheduled computation's first emission). Submit itself does
// not check cancellation; the worker that dequeues the item does, and
// drops it unexecuted once the phase is cancelled.
func (e *Engine) Submit(r Result) {
	e.enqueue(func(eng *Engine) { eng.integrate(r) })
}

func (e *Engine) enqueue(item workItem) {
	e.mu.Lock()
	e.live++
	e.queue = append(e.queue, item)
	e.cond.Signal()
	e.mu.Unlock()
}

func (e *Engine) workerLoop(ctx context.Context) {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if len(e.queue) == 0 {
			// closed and drained: this round is done for this worker.
			e.mu.Unlock()
			return
		}
		item := e.queue[0]
		e.queue = e.queue[1:]
		cancelled := e.cancelled.Load()
		e.mu.Unlock()

		if !cancelled {
			e.runItem(item)
		}
		// Cancelled: drain without executing — "queue drained, final
		// states preserved, refinable states left as InterimLUB" (§4.3).

		e.mu.Lock()
		e.live--
		if e.live == 0 {
			e.cond.Broadcast()
		}
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			e.Cancel()
		default:
		}
	}
}

// runItem executes one work item, containing a panic as an Analysis
// failure rather than letting it crash the worker (§7: "A panic inside a
// worker's continuation aborts that worker, marks the phase as failed,
// raises cancellation"). Other workers keep running; this phase is simply
// recorded as failed.
func (e *Engine) runItem(item workItem) {
	defer func() {
		if r := recover(); r != nil {
			e.recordFailure(epkstate.Key{}, fmt.Errorf("panic in analysis computation: %v", r), r)
			e.Cancel()
		}
	}()
	item(e)
}

func (e *Engine) recordFailure(key epkstate.Key, err error, p any) {
	e.failuresMu.Lock()
	defer e.failuresMu.Unlock()
	e.failures = append(e.failures, AnalysisFailure{Key: key, Err: err, Panic: p})
}

// Failures returns every analysis failure recorded during the current (or
// most recently finished) phase.
func (e *Engine) Failures() []AnalysisFailure {
	e.failuresMu.Lock()
	defer e.failuresMu.Unlock()
	out := make([]AnalysisFailure, len(e.failures))
	copy(out, e.failures)
	return out
}

// WaitForQuiescence blocks until the queue is empty and no work is in
// flight (§4.3: "all workers are idle, the queue is empty, and no results
// are in flight").
func (e *Engine) WaitForQuiescence() {
	e.mu.Lock()
	for e.live > 0 {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// States returns a snapshot of every EPKState the engine has created
// across every phase run so far.
func (e *Engine) States() []*epkstate.State { return e.states.snapshot() }

func (e *Engine) notifyDependers(dependeeKey epkstate.Key, dependerKeys []epkstate.Key, updated eoptionp.EOptionP) {
	for _, dk := range dependerKeys {
		depState, ok := e.states.get(dk)
		if !ok {
			continue
		}
		if c, ok := depState.PrepareInvokeC(dependeeKey); ok {
			e.enqueue(func(eng *Engine) { eng.integrate(c(updated)) })
		}
	}
}
