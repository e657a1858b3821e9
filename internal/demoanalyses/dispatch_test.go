package demoanalyses

import (
	"context"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
)

func TestRunJoinReportHasOneMergedProperty(t *testing.T) {
	report, err := Run(context.Background(), "join", 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(report.Result.Ok()))
	qt.Assert(t, qt.Equals(len(report.Properties), 1))

	got := report.Properties[0]
	if got.Kind != "Strings" || !strings.Contains(got.Value, "a,b") {
		t.Fatalf("unexpected property, full dump:\n%s", pretty.Sprint(got))
	}
}

func TestRunRejectsUnknownScenarioName(t *testing.T) {
	_, err := Run(context.Background(), "not-a-scenario", 4)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestRunFallbackReportShapeIsStableAcrossIndependentRuns(t *testing.T) {
	before, err := Run(context.Background(), "fallback", 4)
	qt.Assert(t, qt.IsNil(err))
	after, err := Run(context.Background(), "fallback", 4)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(before.Properties), 1))
	qt.Assert(t, qt.Equals(len(after.Properties), 1))

	// Each call builds its own registry, store, and random entity id, so
	// only the Kind and Value are expected to match between the two
	// independent runs; Entity differs every time. cmp.Diff over just
	// those two fields catches drift in either without hand-rolling a
	// field-by-field comparison, and pretty.Sprint gives a full dump of
	// the mismatching report if it ever does.
	type shape struct{ Kind, Value string }
	first := shape{before.Properties[0].Kind, before.Properties[0].Value}
	second := shape{after.Properties[0].Kind, after.Properties[0].Value}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("two independent fallback runs diverged (-first +second):\n%s\nfirst report:\n%s",
			diff, pretty.Sprint(before))
	}
}
