// Package scheduler computes phase order for a set of analysis manifests
// (§4.5): it builds a dependency graph from each
// manifest's Uses edges, groups mutually dependent manifests (a cycle of
// "uses") into a single phase — since within one phase the engine's own
// quiescence and collaborative cycle resolution settles them together —
// and orders the resulting phases so that every manifest's dependencies
// run in an earlier or the same phase.
//
// The graph half of this package is adapted from the teacher's
// internal/core/toposort: a GraphBuilder assembling nodes and edges,
// followed by Tarjan's strongly-connected-components algorithm and a
// topological ordering of the condensation graph. Generalized here with a
// Go type parameter over a comparable analysis-id key instead of CUE's
// adt.Feature, and trimmed to Tarjan's SCC output order directly (which
// is already a valid sink-first schedule) rather than the teacher's
// separate elementary-cycle enumeration and custom reinsertion pass —
// this package has no notion of "breaking" a cycle for display purposes,
// only of grouping it into one phase, so that machinery has no job here.
package scheduler

// GraphBuilder assembles a dependency graph over keys of type K before
// handing it to Build for analysis. AddEdge(from, to) records that from
// depends on to: to must be scheduled in an earlier or the same phase.
type GraphBuilder[K comparable] struct {
	nodes map[K]*node[K]
	order []K // insertion order, for deterministic iteration
}

type node[K comparable] struct {
	key      K
	out      []K // dependencies: edges this node points to
	index    int // Tarjan DFS index, -1 until visited
	lowlink  int
	onStack  bool
}

// NewGraphBuilder creates an empty graph builder.
func NewGraphBuilder[K comparable]() *GraphBuilder[K] {
	return &GraphBuilder[K]{nodes: make(map[K]*node[K])}
}

// EnsureNode guarantees a node for key exists, even if it has no edges
// (an analysis that uses nothing and nothing uses).
func (b *GraphBuilder[K]) EnsureNode(key K) {
	if _, ok := b.nodes[key]; ok {
		return
	}
	b.nodes[key] = &node[K]{key: key, index: -1}
	b.order = append(b.order, key)
}

// AddEdge records that from depends on to. Idempotent.
func (b *GraphBuilder[K]) AddEdge(from, to K) {
	b.EnsureNode(from)
	b.EnsureNode(to)
	n := b.nodes[from]
	for _, existing := range n.out {
		if existing == to {
			return
		}
	}
	n.out = append(n.out, to)
}

// Graph is the built, read-only dependency graph.
type Graph[K comparable] struct {
	nodes map[K]*node[K]
	order []K
}

// Build finalizes the graph for analysis.
func (b *GraphBuilder[K]) Build() *Graph[K] {
	return &Graph[K]{nodes: b.nodes, order: b.order}
}

// StronglyConnectedComponents returns the graph's SCCs via Tarjan's
// algorithm, in output order: a component containing only "sink" nodes
// (no outgoing dependency edges, i.e. no unmet uses) comes first, and a
// component that depends (directly or transitively) on another always
// comes after it. That is exactly the phase order a caller wants: run
// the components in the order returned.
func (g *Graph[K]) StronglyConnectedComponents() [][]K {
	t := &tarjan[K]{g: g, indexCounter: 0}
	for _, k := range g.order {
		if g.nodes[k].index < 0 {
			t.strongConnect(g.nodes[k])
		}
	}
	return t.components
}

type tarjan[K comparable] struct {
	g            *Graph[K]
	indexCounter int
	stack        []*node[K]
	components   [][]K
}

func (t *tarjan[K]) strongConnect(v *node[K]) {
	v.index = t.indexCounter
	v.lowlink = t.indexCounter
	t.indexCounter++
	t.stack = append(t.stack, v)
	v.onStack = true

	for _, wKey := range v.out {
		w := t.g.nodes[wKey]
		switch {
		case w.index < 0:
			t.strongConnect(w)
			if w.lowlink < v.lowlink {
				v.lowlink = w.lowlink
			}
		case w.onStack:
			if w.index < v.lowlink {
				v.lowlink = w.index
			}
		}
	}

	if v.lowlink == v.index {
		var component []K
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			w.onStack = false
			component = append(component, w.key)
			if w == v {
				break
			}
		}
		t.components = append(t.components, component)
	}
}
