// Package lattice defines property kinds and the lattice each one carries:
// bounds, join (least upper bound), the fallback value installed for
// entities no analysis ever touches, and the per-kind cycle-resolution
// strategy used once a phase reaches quiescence with refinable state still
// outstanding. See § 3 and § 4.1.
package lattice

import "fmt"

// Entity is an opaque handle to a program element — a class, method,
// field, statement, or allocation site in the bytecode-analysis domain
// this module serves, or any other externally-supplied identity. The
// store never inspects it; equality is whatever Go's == operator does for
// the concrete type the caller chooses (typically a pointer), matching §3's
// "equality is by reference-identity" requirement. Entity must be
// comparable so it can key maps.
type Entity any

// Property is an immutable value belonging to some registered Kind. Two
// properties of the same kind must be comparable under the kind's partial
// order via that Kind's LessEq function.
type Property interface {
	// Kind returns the id of the kind this property belongs to.
	Kind() KindID
}

// KindID is the dense, startup-assigned integer identifying a property
// kind, per §3 ("a stable integer id (dense, starting at 0)").
type KindID int

// CycleResolver promotes a still-refinable property (typically a kind's
// current upper bound) to the final value installed when quiescence is
// reached and the state in question never became final on its own. The
// default, used when a Kind does not register one, is PromoteUBToFinal.
type CycleResolver func(ub Property) Property

// Kind is a registered property kind: its lattice operations, its
// fallback, and its cycle-resolution strategy.
type Kind struct {
	// ID is assigned by the Registry at registration time.
	ID KindID
	// Name is used only for diagnostics (error messages, logging).
	Name string

	// Fallback is installed, as a final value, for any entity that reaches
	// quiescence without ever having been produced by an analysis. See
	// "Fallback soundness" in §8.
	Fallback Property

	// Join computes the least upper bound of two properties of this kind.
	// Must be total, associative, commutative, and idempotent (§4.1, §8's
	// round-trip laws).
	Join func(a, b Property) Property

	// LessEq reports whether a is no more informative than b under this
	// kind's partial order (a ⊑ b). Two properties are equal in the
	// lattice sense iff LessEq(a,b) && LessEq(b,a).
	LessEq func(a, b Property) bool

	// FastTrack, if non-nil, is invoked the first time an entity of this
	// kind is read with no state yet present, to seed the lattice with a
	// cheaply computed starting bound instead of a bare EPK. Optional.
	FastTrack func(e Entity) (Property, bool)

	// CycleResolver overrides the default "promote ub to final" strategy
	// for this kind. Optional; nil means use PromoteUBToFinal.
	CycleResolver CycleResolver
}

// PromoteUBToFinal is the universal default cycle-resolution strategy: the
// current upper bound simply becomes the final value.
func PromoteUBToFinal(ub Property) Property { return ub }

// Resolver returns the Kind's cycle resolver, defaulting to
// PromoteUBToFinal.
func (k *Kind) Resolver() CycleResolver {
	if k.CycleResolver != nil {
		return k.CycleResolver
	}
	return PromoteUBToFinal
}

// Equal reports whether a and b are equal under the kind's lattice, i.e.
// mutually LessEq.
func (k *Kind) Equal(a, b Property) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return k.LessEq(a, b) && k.LessEq(b, a)
}

// CheckIsValidUpdate is the debug-mode runtime invariant from §4.1 for a
// bound that grows toward the final value (a lower bound, or any
// single-bound kind's value): the proposed new value must be no less
// informative than the old one, i.e. old ⊑ new. Returns a descriptive
// error if the update would not be monotone; nil if it is fine. The update
// engine calls this only in phases run with debug mode enabled
// (PhaseConfig.Debug), since it is an O(1) but non-trivial call on every
// update.
func (k *Kind) CheckIsValidUpdate(old, newP Property) error {
	if old == nil {
		return nil
	}
	if newP == nil {
		return fmt.Errorf("kind %s: update would erase property of entity (old=%v)", k.Name, old)
	}
	if !k.LessEq(old, newP) {
		return fmt.Errorf("kind %s: non-monotone update: old=%v does not precede new=%v under the kind's lattice", k.Name, old, newP)
	}
	return nil
}

// CheckIsValidNarrowing is CheckIsValidUpdate's mirror image, for a bound
// that shrinks toward the final value (an upper bound): the proposed new
// value must be no more informative than the old one, i.e. new ⊑ old.
func (k *Kind) CheckIsValidNarrowing(old, newP Property) error {
	if old == nil {
		return nil
	}
	if newP == nil {
		return fmt.Errorf("kind %s: narrowing would erase property of entity (old=%v)", k.Name, old)
	}
	if !k.LessEq(newP, old) {
		return fmt.Errorf("kind %s: non-monotone narrowing: new=%v does not precede old=%v under the kind's lattice", k.Name, newP, old)
	}
	return nil
}
