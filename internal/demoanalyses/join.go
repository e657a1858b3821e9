package demoanalyses

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/internal/engine"
	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/pkg/eoptionp"
	"github.com/fpcfgo/fpcf/pkg/lattice"
	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// stringSet is the lattice.Property for the join scenario: a set of
// strings ordered by inclusion, joined by union. Represented as its sorted
// elements joined by commas into one string, so two sets built from the
// same elements compare equal under Go's
// == (needed by AddDepender's reference-equality check), not just under
// LessEq.
type stringSet struct {
	kind lattice.KindID
	elems string
}

func (s stringSet) Kind() lattice.KindID { return s.kind }

func newStringSet(kind lattice.KindID, elems ...string) stringSet {
	sorted := append([]string(nil), elems...)
	sort.Strings(sorted)
	joined := ""
	for i, e := range sorted {
		if i > 0 {
			joined += ","
		}
		joined += e
	}
	return stringSet{kind: kind, elems: joined}
}

func stringSetJoin(a, b lattice.Property) lattice.Property {
	sa, sb := a.(stringSet), b.(stringSet)
	seen := map[string]bool{}
	var all []string
	for _, part := range splitNonEmpty(sa.elems) {
		if !seen[part] {
			seen[part] = true
			all = append(all, part)
		}
	}
	for _, part := range splitNonEmpty(sb.elems) {
		if !seen[part] {
			seen[part] = true
			all = append(all, part)
		}
	}
	return newStringSet(sa.kind, all...)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

// stringSetLessEq is subset-or-equal under union: a ⊑ b iff join(a,b)==b.
func stringSetLessEq(a, b lattice.Property) bool {
	joined := stringSetJoin(a, b).(stringSet)
	return joined.elems == b.(stringSet).elems
}

// Join is scenario 2 (§8): K(e) is a set of strings; A1 contributes {"a"}
// via a partial result, A2 contributes {"b"}. Neither analysis ever
// finalizes K(e) itself — PartialResult is a read-modify-write that only
// ever leaves the state in an interim shape — so the expected final
// {"a","b"} is installed by cycle resolution at quiescence, promoting the
// joined upper bound to final exactly as a genuine cycle would.
func Join(ctx context.Context, workers int) (Outcome, lattice.Entity, lattice.KindID, error) {
	reg := lattice.NewRegistry()
	k, err := reg.Register("Strings", newStringSet(0), stringSetJoin, stringSetLessEq)
	if err != nil {
		return Outcome{}, nil, 0, err
	}
	e := uuid.New()
	key := epkstate.Key{E: e, K: k.ID}

	contribute := func(value string) func(lattice.Entity) engine.Result {
		return func(entity lattice.Entity) engine.Result {
			return engine.PartialResult{
				Key: key,
				Update: func(old eoptionp.EOptionP) (eoptionp.EOptionP, bool) {
					oldSet, ok := old.UB()
					var joined stringSet
					if !ok || oldSet == nil {
						joined = newStringSet(k.ID, value)
					} else {
						joined = stringSetJoin(oldSet, newStringSet(k.ID, value)).(stringSet)
					}
					// Carried as an upper bound rather than a lower bound:
					// cycle resolution at quiescence promotes a state's
					// UB to final, which is what turns this accumulating
					// set into Join's expected FinalEP once both
					// contributors have run.
					return eoptionp.InterimUB{E: entity, K: k.ID, UBv: joined}, true
				},
			}
		}
	}

	outcome, err := runSinglePhase(ctx, reg, workers, propertystore.PhaseConfig{
		Name:  "join",
		Kinds: []lattice.KindID{k.ID},
	}, func(store *propertystore.Store) error {
		if err := store.ScheduleEagerComputationForEntity(e, k.ID, contribute("a")); err != nil {
			return err
		}
		return store.ScheduleEagerComputationForEntity(e, k.ID, contribute("b"))
	})
	return outcome, e, k.ID, err
}
