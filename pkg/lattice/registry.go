package lattice

import (
	"fmt"
	"sync"

	"github.com/fpcfgo/fpcf/internal/fpcferrors"
)

// Registry assigns dense integer ids to property kinds at startup. Name
// collisions are fatal (§3, §6: "Name collisions are fatal"), reported as
// an *fpcferrors.Error of kind Configuration rather than a panic, since
// registration happens before any computation runs and callers are
// expected to check the returned error.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Kind
	byID    []*Kind
	nextID  KindID
}

// NewRegistry creates an empty kind registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Kind)}
}

// Register assigns the next dense id to a new kind with the given name,
// fallback, join, and partial order, returning the fully populated *Kind.
// Registering two kinds with the same name is a Configuration error.
func (r *Registry) Register(name string, fallback Property, join func(a, b Property) Property, lessEq func(a, b Property) bool) (*Kind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, fpcferrors.Newf(fpcferrors.Configuration, "property kind %q already registered", name)
	}

	k := &Kind{
		ID:       r.nextID,
		Name:     name,
		Fallback: fallback,
		Join:     join,
		LessEq:   lessEq,
	}
	r.nextID++
	r.byName[name] = k
	r.byID = append(r.byID, k)
	return k, nil
}

// MustRegister is Register, panicking on error. Intended for package-level
// var initialization in analyses, mirroring how the teacher's adt package
// treats condition-bitmask setup as a startup-time invariant rather than a
// runtime-checked one.
func (r *Registry) MustRegister(name string, fallback Property, join func(a, b Property) Property, lessEq func(a, b Property) bool) *Kind {
	k, err := r.Register(name, fallback, join, lessEq)
	if err != nil {
		panic(err)
	}
	return k
}

// Kind looks up a previously registered kind by id.
func (r *Registry) Kind(id KindID) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

// KindByName looks up a previously registered kind by name.
func (r *Registry) KindByName(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Kinds returns every registered kind in id order.
func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Kind, len(r.byID))
	copy(out, r.byID)
	return out
}

func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("Registry{%d kinds}", len(r.byID))
}
