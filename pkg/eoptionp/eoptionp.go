// Package eoptionp defines EOptionP, the visible state of one
// (entity, property-kind) pair, per §3. It has four
// shapes: no value yet (EPK), both bounds present (InterimLUB), only one
// bound known for half-lattice kinds (InterimUB/InterimLB), or stable
// (FinalEP).
package eoptionp

import (
	"fmt"

	"github.com/fpcfgo/fpcf/pkg/lattice"
)

// EOptionP is the observable extension of one (entity, kind) pair.
type EOptionP interface {
	// Entity is the entity this extension belongs to.
	Entity() lattice.Entity
	// Kind is the id of the property kind this extension belongs to.
	Kind() lattice.KindID
	// IsFinal reports whether this extension is a FinalEP: stable, no
	// further updates possible.
	IsFinal() bool
	// IsEPK reports whether this extension has no value computed yet.
	IsEPK() bool
	// LB returns the current lower bound, if this shape carries one.
	LB() (lattice.Property, bool)
	// UB returns the current upper bound, if this shape carries one. For a
	// FinalEP, UB returns the final value with ok=true (a final value is,
	// trivially, its own upper bound).
	UB() (lattice.Property, bool)
	fmt.Stringer
}

// EPK is the "no value computed yet" shape.
type EPK struct {
	E lattice.Entity
	K lattice.KindID
}

func (e EPK) Entity() lattice.Entity            { return e.E }
func (e EPK) Kind() lattice.KindID               { return e.K }
func (e EPK) IsFinal() bool                      { return false }
func (e EPK) IsEPK() bool                        { return true }
func (e EPK) LB() (lattice.Property, bool)       { return nil, false }
func (e EPK) UB() (lattice.Property, bool)       { return nil, false }
func (e EPK) String() string                     { return fmt.Sprintf("EPK(%v)", e.E) }

// InterimLUB carries both a lower and an upper bound; lb ⊑ ub, or the pair
// is still refinable toward each other.
type InterimLUB struct {
	E      lattice.Entity
	K      lattice.KindID
	LBv    lattice.Property
	UBv    lattice.Property
}

func (e InterimLUB) Entity() lattice.Entity      { return e.E }
func (e InterimLUB) Kind() lattice.KindID        { return e.K }
func (e InterimLUB) IsFinal() bool               { return false }
func (e InterimLUB) IsEPK() bool                 { return false }
func (e InterimLUB) LB() (lattice.Property, bool) { return e.LBv, true }
func (e InterimLUB) UB() (lattice.Property, bool) { return e.UBv, true }
func (e InterimLUB) String() string {
	return fmt.Sprintf("InterimLUB(%v, lb=%v, ub=%v)", e.E, e.LBv, e.UBv)
}

// InterimUB carries only an upper bound, for half-lattice kinds that never
// track a lower bound.
type InterimUB struct {
	E   lattice.Entity
	K   lattice.KindID
	UBv lattice.Property
}

func (e InterimUB) Entity() lattice.Entity       { return e.E }
func (e InterimUB) Kind() lattice.KindID         { return e.K }
func (e InterimUB) IsFinal() bool                { return false }
func (e InterimUB) IsEPK() bool                  { return false }
func (e InterimUB) LB() (lattice.Property, bool) { return nil, false }
func (e InterimUB) UB() (lattice.Property, bool) { return e.UBv, true }
func (e InterimUB) String() string               { return fmt.Sprintf("InterimUB(%v, ub=%v)", e.E, e.UBv) }

// InterimLB carries only a lower bound.
type InterimLB struct {
	E   lattice.Entity
	K   lattice.KindID
	LBv lattice.Property
}

func (e InterimLB) Entity() lattice.Entity       { return e.E }
func (e InterimLB) Kind() lattice.KindID         { return e.K }
func (e InterimLB) IsFinal() bool                { return false }
func (e InterimLB) IsEPK() bool                  { return false }
func (e InterimLB) LB() (lattice.Property, bool) { return e.LBv, true }
func (e InterimLB) UB() (lattice.Property, bool) { return nil, false }
func (e InterimLB) String() string               { return fmt.Sprintf("InterimLB(%v, lb=%v)", e.E, e.LBv) }

// FinalEP is a stable value: no further updates are possible.
type FinalEP struct {
	E lattice.Entity
	K lattice.KindID
	P lattice.Property
}

func (e FinalEP) Entity() lattice.Entity       { return e.E }
func (e FinalEP) Kind() lattice.KindID         { return e.K }
func (e FinalEP) IsFinal() bool                { return true }
func (e FinalEP) IsEPK() bool                  { return false }
func (e FinalEP) LB() (lattice.Property, bool) { return e.P, true }
func (e FinalEP) UB() (lattice.Property, bool) { return e.P, true }
func (e FinalEP) String() string               { return fmt.Sprintf("FinalEP(%v, %v)", e.E, e.P) }
