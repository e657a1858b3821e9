// Package epkstate implements EPKState, the per (entity, property-kind)
// mutable state described in §4.2: the state's current
// extension, its pending on-update continuation, its dependees, and its
// reverse edges (dependers). All mutation happens under the state's own
// lock, mirroring the teacher's internal/core/adt scheduler: a single
// node's tasks, blocking list, and completion bitmask are likewise only
// ever touched while that node is "current".
package epkstate

import (
	"sync"

	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// Key identifies one (entity, kind) pair — the map key the store's
// concurrent map is keyed on.
type Key struct {
	E lattice.Entity
	K lattice.KindID
}

// Continuation is the on-update callback an analysis attaches to an
// interim result: the update engine calls it, off the depender's lock,
// with the dependee's new extension once any dependee tightens.
// Continuations must only touch the store through the façade (§5 "shared
// resource policy"): this package deliberately does not give them a way to
// reach another EPKState directly.
// The return value is an internal/engine.Result, kept as `any` here to
// avoid a cyclic import between epkstate and engine.
type Continuation func(updatedDependee eoptionp.EOptionP) any

// State is one EPKState: the mutable record for a single (entity, kind)
// pair. Every operation listed in §4.2 takes the lock; callers (the update
// engine) must never read or write the fields directly.
type State struct {
	mu sync.Mutex

	key  Key
	kind *lattice.Kind

	current eoptionp.EOptionP

	// c is the pending on-update continuation; nil once consumed.
	c Continuation
	// dependees is the set of (entity, kind) pairs this state's
	// continuation is currently waiting on.
	dependees map[Key]struct{}
	// dependers is the reverse edge set: states waiting on this one.
	dependers map[Key]struct{}
}

// New creates a fresh EPKState in the EPK shape for key under kind.
func New(key Key, kind *lattice.Kind) *State {
	return &State{
		key:     key,
		kind:    kind,
		current: eoptionp.EPK{E: key.E, K: key.K},
	}
}

// Current returns a snapshot of the state's current extension.
func (s *State) Current() eoptionp.EOptionP {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// HasPendingContinuation reports whether some continuation is currently
// installed on this state — the "isCurrentC" check named in §4.2,
// specialized to the common case callers actually need (is there anything
// still pending to consume), since Go func values aren't comparable and
// PrepareInvokeC's detach-on-read already provides the single-consumer
// guarantee §4.2 requires.
func (s *State) HasPendingContinuation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c != nil
}

// UpdateOutcome is returned by Update and FinalUpdate: the set of
// dependers to notify (after the caller releases this state's lock) and
// the extension that was current immediately before the update, which the
// update engine needs to recompute reverse edges (§4.3 step 2: "Returning
// the old value is required so the update engine can recompute reverse
// edges").
type UpdateOutcome struct {
	Applied    bool
	Old        eoptionp.EOptionP
	ToNotify   []Key
	Suppressed []Key
}

// Suppressor decides whether an update to this state (the dependee) should
// be suppressed for a given depender, per the 2-D suppression matrix of
// §4.3. It is supplied by the update engine, which owns phase
// configuration; epkstate itself has no notion of a suppression matrix.
type Suppressor func(dependerKind, dependeeKind lattice.KindID) bool

// Update installs a new interim extension if, and only if, it is strictly
// more informative than the current one (per kind.LessEq-derived
// IsUpdated). On success it replaces c and dependees, partitions
// dependers into suppressed and to-notify using suppress, and returns the
// old extension so the caller can recompute reverse edges. If current is
// already final, Update changes nothing and returns Applied=false; it does
// not panic, and the update engine drops such an update without reporting
// an error.
func (s *State) Update(newEOptionP eoptionp.EOptionP, c Continuation, dependees []Key, suppress Suppressor) UpdateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsFinal() {
		return UpdateOutcome{Applied: false, Old: s.current}
	}

	if !eoptionp.IsUpdated(s.kind, newEOptionP, s.current) {
		return UpdateOutcome{Applied: false, Old: s.current}
	}

	old := s.current
	s.current = newEOptionP
	s.c = c

	s.dependees = make(map[Key]struct{}, len(dependees))
	for _, d := range dependees {
		s.dependees[d] = struct{}{}
	}

	toNotify, suppressed := s.partitionDependersLocked(suppress)
	return UpdateOutcome{Applied: true, Old: old, ToNotify: toNotify, Suppressed: suppressed}
}

// partitionDependersLocked splits s.dependers into suppressed and
// to-notify using the 2-D suppression matrix, clearing neither set (§4.2:
// "clear the suppressed list" refers to the notify list, not the
// dependers themselves — suppressed dependers stay attached). Caller must
// hold s.mu.
func (s *State) partitionDependersLocked(suppress Suppressor) (toNotify, suppressed []Key) {
	for dep := range s.dependers {
		if suppress != nil && suppress(dep.K, s.key.K) {
			suppressed = append(suppressed, dep)
			continue
		}
		toNotify = append(toNotify, dep)
	}
	return toNotify, suppressed
}

// UpdateFunc is EPKState.Update's functional-update sibling: the caller
// supplies a pure function from the current extension to an optional new
// one, computed atomically under this state's lock. The engine's
// PartialResult processing uses UpdatePartial instead, which keeps the
// existing continuation.
func (s *State) UpdateFunc(u func(old eoptionp.EOptionP) (eoptionp.EOptionP, bool), c Continuation, dependees []Key, suppress Suppressor) UpdateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.current

	if current.IsFinal() {
		return UpdateOutcome{Applied: false, Old: current}
	}

	newVal, ok := u(current)
	if !ok || !eoptionp.IsUpdated(s.kind, newVal, current) {
		return UpdateOutcome{Applied: false, Old: current}
	}
	s.current = newVal
	s.c = c
	s.dependees = make(map[Key]struct{}, len(dependees))
	for _, d := range dependees {
		s.dependees[d] = struct{}{}
	}
	toNotify, suppressed := s.partitionDependersLocked(suppress)
	return UpdateOutcome{Applied: true, Old: current, ToNotify: toNotify, Suppressed: suppressed}
}

// UpdatePartial runs u as a monotone read-modify-write, the way a
// PartialResult does (§4.3): unlike Update, it leaves any existing pending
// continuation and dependee set untouched, since "partial results never
// attach continuations" and must not clobber a continuation some other
// analysis already installed while waiting on this same entity.
func (s *State) UpdatePartial(u func(old eoptionp.EOptionP) (eoptionp.EOptionP, bool), suppress Suppressor) UpdateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsFinal() {
		return UpdateOutcome{Applied: false, Old: s.current}
	}

	newVal, ok := u(s.current)
	if !ok {
		return UpdateOutcome{Applied: false, Old: s.current}
	}
	if !eoptionp.IsUpdated(s.kind, newVal, s.current) {
		return UpdateOutcome{Applied: false, Old: s.current}
	}

	old := s.current
	s.current = newVal
	toNotify, suppressed := s.partitionDependersLocked(suppress)
	return UpdateOutcome{Applied: true, Old: old, ToNotify: toNotify, Suppressed: suppressed}
}

// AttachContinuation installs c and dependees without changing the state's
// current extension, for InterimPartialResult (§4.3): "carries no value of
// its own, only dependees and a continuation". Returns false if the state
// is already final.
func (s *State) AttachContinuation(c Continuation, dependees []Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsFinal() {
		return false
	}
	s.c = c
	s.dependees = make(map[Key]struct{}, len(dependees))
	for _, d := range dependees {
		s.dependees[d] = struct{}{}
	}
	return true
}

// FinalUpdate installs a final extension, clears c and dependees, and
// returns the snapshot of dependers (cleared afterward) to notify.
// Precondition: current must not already be final.
func (s *State) FinalUpdate(final eoptionp.EOptionP) UpdateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsFinal() {
		return UpdateOutcome{Applied: false, Old: s.current}
	}

	old := s.current
	s.current = final
	s.c = nil
	s.dependees = nil

	toNotify := make([]Key, 0, len(s.dependers))
	for dep := range s.dependers {
		toNotify = append(toNotify, dep)
	}
	s.dependers = nil

	return UpdateOutcome{Applied: true, Old: old, ToNotify: toNotify}
}

// AddDepender attempts a compare-and-set: depender is added to this
// state's dependers iff the state's current extension is the same value
// as expected (or, if alwaysExceptIfFinal is set, iff the state is not yet
// final). Returns false if the state has moved on, which the caller (the
// update engine) treats as "invoke c immediately with the new value"
// (§4.3 step 3).
func (s *State) AddDepender(expected eoptionp.EOptionP, depender Key, alwaysExceptIfFinal bool) (ok bool, current eoptionp.EOptionP) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alwaysExceptIfFinal {
		if s.current.IsFinal() {
			return false, s.current
		}
	} else if !sameExtension(s.current, expected) {
		return false, s.current
	}

	if s.dependers == nil {
		s.dependers = make(map[Key]struct{})
	}
	s.dependers[depender] = struct{}{}
	return true, s.current
}

// sameExtension compares two EOptionP snapshots for the reference-equality
// semantics §4.2 describes ("reference-equal to expected_eOptionP"). Since
// Go EOptionP implementations here are plain value types, equality is
// field equality, which is the value-type analog of reference equality for
// an immutable snapshot: a state's `current` field is only ever replaced
// wholesale, never mutated in place, so two snapshots compare equal iff
// they were the same installed extension.
func sameExtension(a, b eoptionp.EOptionP) bool {
	return a == b
}

// PrepareInvokeC detaches and returns this state's continuation if it is
// currently set and updatedDependee belongs to the state's dependees.
// Returns ok=false if another notifier already consumed it (§4.2).
func (s *State) PrepareInvokeC(updatedDependee Key) (c Continuation, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		return nil, false
	}
	if _, isDependee := s.dependees[updatedDependee]; !isDependee {
		return nil, false
	}

	c = s.c
	s.c = nil
	s.dependees = nil
	return c, true
}

// RemoveDepender removes depender from this state's dependers.
func (s *State) RemoveDepender(depender Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dependers, depender)
}

// ClearDependees removes every dependee this state's continuation was
// waiting on (§4.3 step 4). The engine does not call it: PrepareInvokeC
// already clears the dependees when it detaches the continuation.
func (s *State) ClearDependees() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dependees = nil
}

// Dependees returns a snapshot of the current dependee set.
func (s *State) Dependees() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.dependees))
	for k := range s.dependees {
		out = append(out, k)
	}
	return out
}

// Dependers returns a snapshot of the current depender set.
func (s *State) Dependers() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.dependers))
	for k := range s.dependers {
		out = append(out, k)
	}
	return out
}

// Kind returns the property kind this state belongs to.
func (s *State) Kind() *lattice.Kind { return s.kind }

// Key returns the (entity, kind) key this state belongs to.
func (s *State) Key() Key { return s.key }

