package scheduler_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/fpcfgo/fpcf/pkg/scheduler"
)

func index(phases [][]string, id string) int {
	for i, phase := range phases {
		for _, got := range phase {
			if got == id {
				return i
			}
		}
	}
	return -1
}

func TestTopologicalOrderRespectsDependencies(t *testing.T) {
	b := scheduler.NewGraphBuilder[string]()
	b.AddEdge("B", "A") // B depends on A
	b.AddEdge("C", "B") // C depends on B

	phases := b.Build().StronglyConnectedComponents()

	qt.Assert(t, qt.IsTrue(index(phases, "A") < index(phases, "B")))
	qt.Assert(t, qt.IsTrue(index(phases, "B") < index(phases, "C")))
}

func TestMutualDependencyLandsInOneComponent(t *testing.T) {
	b := scheduler.NewGraphBuilder[string]()
	b.AddEdge("X", "Y")
	b.AddEdge("Y", "X")
	b.AddEdge("Z", "X")

	phases := b.Build().StronglyConnectedComponents()

	qt.Assert(t, qt.Equals(index(phases, "X"), index(phases, "Y")))
	qt.Assert(t, qt.IsTrue(index(phases, "X") < index(phases, "Z")))
}

func TestIsolatedNodeGetsItsOwnComponent(t *testing.T) {
	b := scheduler.NewGraphBuilder[string]()
	b.EnsureNode("lonely")
	b.AddEdge("A", "B")

	phases := b.Build().StronglyConnectedComponents()
	qt.Assert(t, qt.IsTrue(index(phases, "lonely") >= 0))
}
