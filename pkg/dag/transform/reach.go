package transform

import "github.com/matzehuels/dagflow/pkg/dag"

// HasPath reports whether a directed walk from -> to exists using only the
// given edges. A node always reaches itself, so HasPath(e, x, x) is true for
// any x. Edges may form cycles; the search terminates regardless.
func HasPath(edges []dag.Edge, from, to string) bool {
	return dag.Reachable(adjacency(edges), from, to)
}

// Components returns the strongly connected components of g in the order
// Tarjan's algorithm completes them. Nodes are visited in insertion order so
// the result is deterministic. Every node belongs to exactly one component;
// acyclic graphs yield one singleton per node.
func Components(g *dag.DAG) [][]string {
	var (
		index   = make(map[string]int, g.NodeCount())
		low     = make(map[string]int, g.NodeCount())
		onStack = make(map[string]bool, g.NodeCount())
		stack   []string
		next    int
		comps   [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Children(v) {
			if _, seen := index[w]; !seen {
				strongConnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			comps = append(comps, comp)
		}
	}

	for _, id := range g.NodeIDs() {
		if _, seen := index[id]; !seen {
			strongConnect(id)
		}
	}
	return comps
}

// ComponentIndex maps every node to the index of its component in
// [Components].
func ComponentIndex(g *dag.DAG) map[string]int {
	idx := make(map[string]int, g.NodeCount())
	for i, comp := range Components(g) {
		for _, id := range comp {
			idx[id] = i
		}
	}
	return idx
}

func adjacency(edges []dag.Edge) map[string][]string {
	adj := make(map[string][]string, len(edges))
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}
