package workflow

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/dag/transform"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/layout"
)

// Graph is a built workflow. It is immutable: every derived map is computed
// by [Build] and accessors return copies, so a Graph can be shared between
// goroutines without locking.
type Graph struct {
	name      string
	g         *dag.DAG
	catalog   Catalog
	policy    transform.CyclePolicy
	deps      transform.Dependencies
	levels    map[string]int
	maxLevel  int
	positions layout.Result
	diag      Diagnostics
	feedback  map[dag.Pair]bool
}

// Build ingests a definition and computes dependencies, levels and
// positions. It is a pure function of its inputs.
//
// Ingestion errors (INVALID_NODE, DANGLING_EDGE) and invalid options
// (INVALID_INPUT) fail the build. Cycles do not: cycle edges are kept for
// display and reported in [Graph.Diagnostics].
func Build(def graph.Definition, opts BuildOptions) (*Graph, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g, err := Ingest(def, !opts.NoChain)
	if err != nil {
		return nil, err
	}

	res, stats := transform.Normalize(g, transform.NormalizeOptions{Policy: opts.Policy})

	placements := make([]layout.Placement, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		placements = append(placements, layout.Placement{ID: n.ID, Level: n.Level, Explicit: n.Pos})
	}

	out := &Graph{
		name:      def.Name,
		g:         g,
		catalog:   opts.Catalog,
		policy:    opts.Policy,
		deps:      res.Dependencies,
		levels:    res.Level,
		maxLevel:  res.Max,
		positions: layout.Compute(placements, g.EdgeCount() > 0, opts.Spacing),
		feedback:  make(map[dag.Pair]bool, len(res.Excluded)),
		diag: Diagnostics{
			DuplicatesDropped: stats.DuplicatesRemoved,
			Chained:           !def.HasEdges() && g.EdgeCount() > 0,
			Unordered:         res.Unordered,
		},
	}
	for _, e := range res.Excluded {
		out.feedback[e.Pair()] = true
		out.diag.Excluded = append(out.diag.Excluded, e.Pair())
	}
	return out, nil
}

// Name returns the definition name.
func (w *Graph) Name() string { return w.name }

// Policy returns the cycle policy the graph was built with.
func (w *Graph) Policy() transform.CyclePolicy { return w.policy }

// Catalog returns the workflow catalog used for filtering.
func (w *Graph) Catalog() Catalog { return w.catalog }

// NodeCount returns the number of nodes.
func (w *Graph) NodeCount() int { return w.g.NodeCount() }

// EdgeCount returns the number of deduplicated edges.
func (w *Graph) EdgeCount() int { return w.g.EdgeCount() }

// HasEdges reports whether the graph has at least one edge.
func (w *Graph) HasEdges() bool { return w.g.EdgeCount() > 0 }

// NodeIDs returns node IDs in input order.
func (w *Graph) NodeIDs() []string { return w.g.NodeIDs() }

// Nodes returns copies of all nodes in input order.
func (w *Graph) Nodes() []dag.Node {
	nodes := w.g.Nodes()
	out := make([]dag.Node, len(nodes))
	for i, n := range nodes {
		out[i] = copyNode(n)
	}
	return out
}

// Node returns a copy of the node with the given ID.
func (w *Graph) Node(id string) (dag.Node, bool) {
	n, ok := w.g.Node(id)
	if !ok {
		return dag.Node{}, false
	}
	return copyNode(n), true
}

// Edges returns the deduplicated edges in input order.
func (w *Graph) Edges() []dag.Edge { return w.g.Edges() }

// IsFeedback reports whether the edge from -> to exists but does not block.
func (w *Graph) IsFeedback(from, to string) bool {
	return w.feedback[dag.Pair{From: from, To: to}]
}

// HasPath reports whether to is reachable from from over all edges,
// feedback edges included.
func (w *Graph) HasPath(from, to string) bool { return w.g.HasPath(from, to) }

// Dependencies returns, for every node with incoming edges, all direct
// predecessors including feedback edges.
func (w *Graph) Dependencies() map[string][]string { return cloneDeps(w.deps.All) }

// BlockingDependencies returns, for every node that has any, the
// predecessors that must finish before it can run.
func (w *Graph) BlockingDependencies() map[string][]string { return cloneDeps(w.deps.Blocking) }

// BlockingFor returns the blocking predecessors of one node in edge order.
// Unknown nodes have none.
func (w *Graph) BlockingFor(nodeID string) []string {
	return slices.Clone(w.deps.Blocking[nodeID])
}

// Level returns the level of a node.
func (w *Graph) Level(id string) (int, bool) {
	lv, ok := w.levels[id]
	return lv, ok
}

// Levels returns a copy of the level map.
func (w *Graph) Levels() map[string]int { return maps.Clone(w.levels) }

// MaxLevel returns the deepest level.
func (w *Graph) MaxLevel() int { return w.maxLevel }

// Position returns the position of a node and the rule that produced it.
func (w *Graph) Position(id string) (layout.Position, layout.Source, bool) {
	p, ok := w.positions.Positions[id]
	return p, w.positions.Sources[id], ok
}

// Positions returns a copy of the position map.
func (w *Graph) Positions() map[string]layout.Position { return maps.Clone(w.positions.Positions) }

// Diagnostics returns what the build repaired.
func (w *Graph) Diagnostics() Diagnostics { return w.diag.clone() }

// BlockingGraph returns a fresh DAG holding every node and only the
// blocking edges. Callers may modify it freely.
func (w *Graph) BlockingGraph() *dag.DAG {
	return transform.BlockingGraph(w.g, w.deps)
}

// Definition exports the graph's deduplicated nodes and edges.
func (w *Graph) Definition() graph.Definition { return graph.FromDAG(w.name, w.g) }

// Validate re-checks the structural guarantees of a built graph: the
// blocking relation is acyclic, levels grow along every blocking edge and
// no (source, target) pair repeats. It returns RESIDUAL_CYCLE or
// INTERNAL_ERROR when a guarantee does not hold.
func (w *Graph) Validate() error {
	if err := w.BlockingGraph().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeResidualCycle, err, "blocking relation")
	}
	for tgt, srcs := range w.deps.Blocking {
		for _, src := range srcs {
			if w.levels[tgt] < w.levels[src]+1 {
				return errors.New(errors.ErrCodeInternal, "level(%s)=%d not below level(%s)=%d",
					src, w.levels[src], tgt, w.levels[tgt])
			}
		}
	}
	seen := make(map[dag.Pair]bool, w.g.EdgeCount())
	for _, e := range w.g.Edges() {
		if seen[e.Pair()] {
			return errors.New(errors.ErrCodeInternal, "duplicate edge %s", e.ID)
		}
		seen[e.Pair()] = true
	}
	return w.diag.Err()
}

// String implements fmt.Stringer.
func (w *Graph) String() string {
	return fmt.Sprintf("workflow %q: %d nodes, %d edges, %d levels", w.name, w.NodeCount(), w.EdgeCount(), w.maxLevel+1)
}

func copyNode(n *dag.Node) dag.Node {
	c := *n
	c.Payload = maps.Clone(n.Payload)
	if n.Pos != nil {
		p := *n.Pos
		c.Pos = &p
	}
	return c
}

func cloneDeps(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
