package demoanalyses

import (
	"context"
	"fmt"
	"sort"

	"github.com/fpcfgo/fpcf/pkg/propertystore"
)

// Names lists every scenario dispatchable by Run, in the order they appear
// in §8.
var Names = []string{
	"linear-chain",
	"join",
	"cycle-with-tightening",
	"suppression",
	"fallback",
	"cancellation-at-scale",
}

// PropertyValue is one (entity, kind) extension as reported by Run, rendered
// for display rather than for further computation.
type PropertyValue struct {
	Entity string
	Kind   string
	Value  string
}

// Report is a scenario's outcome in a form cmd/fpcf can print without
// knowing anything about the scenario's own entity and kind identifiers.
type Report struct {
	Name       string
	Result     propertystore.PhaseResult
	Properties []PropertyValue
}

// Run dispatches to the named scenario, runs it to completion, and
// collects every property reached during the run into a Report. Returns an
// error for an unrecognized name or if the scenario itself fails to set up.
func Run(ctx context.Context, name string, workers int) (Report, error) {
	var outcome Outcome
	var err error

	switch name {
	case "linear-chain":
		outcome, _, _, _, _, err = LinearChain(ctx, workers)
	case "join":
		outcome, _, _, err = Join(ctx, workers)
	case "cycle-with-tightening":
		outcome, _, _, _, err = CycleWithTightening(ctx, workers)
	case "suppression":
		var so SuppressionOutcome
		so, err = Suppression(ctx, workers)
		outcome = so.Outcome
	case "fallback":
		outcome, _, _, err = Fallback(ctx, workers)
	case "cancellation-at-scale":
		outcome, _, _, err = CancellationAtScale(ctx, workers)
	default:
		return Report{}, fmt.Errorf("demoanalyses: unknown scenario %q", name)
	}
	if err != nil {
		return Report{}, err
	}

	return Report{Name: name, Result: outcome.Result, Properties: summarize(outcome)}, nil
}

// summarize walks every kind the scenario registered and every entity that
// ever reached a state under it, independent of the scenario's own local
// entity/kind variables — this is what lets Run stay a flat switch instead
// of threading per-scenario identifiers back out to the caller.
func summarize(o Outcome) []PropertyValue {
	var out []PropertyValue
	for _, k := range o.Reg.Kinds() {
		for _, e := range o.Store.Entities(k.ID) {
			v, err := o.Store.Apply(e, k.ID)
			if err != nil {
				continue
			}
			out = append(out, PropertyValue{
				Entity: fmt.Sprint(e),
				Kind:   k.Name,
				Value:  v.String(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Entity < out[j].Entity
	})
	return out
}
