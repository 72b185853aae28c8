package transform

import (
	"fmt"

	"github.com/matzehuels/dagflow/pkg/dag"
)

// CyclePolicy selects how edges that close a cycle are classified.
type CyclePolicy string

const (
	// PolicyFirstSeen walks edges in definition order and marks an edge
	// non-blocking only if its target already reaches its source through
	// edges accepted so far. For a simple loop this keeps every forward edge
	// and drops exactly the one that closes it.
	PolicyFirstSeen CyclePolicy = "first-seen"

	// PolicyStrict evaluates every edge against the complete edge set. Any
	// edge whose endpoints share a strongly connected component is
	// non-blocking, so a loop contributes no ordering at all.
	PolicyStrict CyclePolicy = "strict"
)

// ParsePolicy converts a configuration string to a CyclePolicy. The empty
// string selects [PolicyFirstSeen]. [PolicyStrict] is the literal rule "an
// edge is non-blocking when its target reaches its source over all edges";
// select it for compatibility with definitions authored against that rule.
func ParsePolicy(s string) (CyclePolicy, error) {
	switch CyclePolicy(s) {
	case "", PolicyFirstSeen:
		return PolicyFirstSeen, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown cycle policy %q (want %s or %s)", s, PolicyFirstSeen, PolicyStrict)
	}
}

// Dependencies is the result of classifying a graph's edges.
type Dependencies struct {
	// All maps each target to every source with an edge into it, in edge
	// order. Feedback edges are included.
	All map[string][]string

	// Blocking is the subset of All that gates execution. The blocking
	// relation is always acyclic.
	Blocking map[string][]string

	// Excluded lists edges left out of Blocking, in edge order.
	Excluded []dag.Edge
}

// IsBlocking reports whether the edge from -> to is a blocking dependency.
func (d Dependencies) IsBlocking(from, to string) bool {
	for _, s := range d.Blocking[to] {
		if s == from {
			return true
		}
	}
	return false
}

// ResolveDependencies classifies the edges of g into all and blocking
// dependency maps. Duplicate (From, To) pairs are counted once. Self-loops
// are never blocking under either policy.
func ResolveDependencies(g *dag.DAG, policy CyclePolicy) Dependencies {
	deps := Dependencies{
		All:      make(map[string][]string),
		Blocking: make(map[string][]string),
	}

	var blocks func(e dag.Edge) bool
	switch policy {
	case PolicyStrict:
		comp := ComponentIndex(g)
		blocks = func(e dag.Edge) bool { return comp[e.From] != comp[e.To] }
	default:
		accepted := make(map[string][]string)
		blocks = func(e dag.Edge) bool {
			if dag.Reachable(accepted, e.To, e.From) {
				return false
			}
			accepted[e.From] = append(accepted[e.From], e.To)
			return true
		}
	}

	seen := make(map[dag.Pair]struct{}, g.EdgeCount())
	for _, e := range g.Edges() {
		if _, dup := seen[e.Pair()]; dup {
			continue
		}
		seen[e.Pair()] = struct{}{}

		deps.All[e.To] = append(deps.All[e.To], e.From)
		if blocks(e) {
			deps.Blocking[e.To] = append(deps.Blocking[e.To], e.From)
		} else {
			deps.Excluded = append(deps.Excluded, e)
		}
	}
	return deps
}

// BlockingGraph returns a copy of g that keeps every node but only the edges
// classified as blocking in deps.
func BlockingGraph(g *dag.DAG, deps Dependencies) *dag.DAG {
	out := dag.New(g.Meta())
	for _, n := range g.Nodes() {
		_ = out.AddNode(*n)
	}
	seen := make(map[dag.Pair]struct{})
	for _, e := range g.Edges() {
		if _, dup := seen[e.Pair()]; dup || !deps.IsBlocking(e.From, e.To) {
			continue
		}
		seen[e.Pair()] = struct{}{}
		_ = out.AddEdge(e)
	}
	return out
}
