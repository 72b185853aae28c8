package transform

import "github.com/matzehuels/dagflow/pkg/dag"

// DedupeEdges collapses edges with the same (From, To) pair, keeping the
// first occurrence. Relative order of the survivors is preserved and the
// input slice is not modified. Running it twice yields the same result.
func DedupeEdges(edges []dag.Edge) []dag.Edge {
	seen := make(map[dag.Pair]struct{}, len(edges))
	out := make([]dag.Edge, 0, len(edges))
	for _, e := range edges {
		p := e.Pair()
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Dedupe removes duplicate (From, To) edges from g in place and returns how
// many were dropped.
func Dedupe(g *dag.DAG) int {
	edges := g.Edges()
	kept := DedupeEdges(edges)
	if len(kept) == len(edges) {
		return 0
	}
	// Endpoints were already validated when the edges were added.
	_ = g.SetEdges(kept)
	return len(edges) - len(kept)
}
