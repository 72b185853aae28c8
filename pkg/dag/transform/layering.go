package transform

import "github.com/matzehuels/dagflow/pkg/dag"

// Levels is the output of [AssignLevels].
type Levels struct {
	// Level maps every input node to its level. Nodes without blocking
	// predecessors sit at level 0.
	Level map[string]int

	// Unordered lists nodes that the traversal never released because they
	// sit on a residual cycle. They are reported at level 0.
	Unordered []string

	// Max is the highest level assigned.
	Max int
}

// AssignLevels computes a longest-path level for each node using Kahn's
// algorithm over the blocking relation (target -> sources).
//
// Each node is placed at one plus the maximum level of its blocking
// predecessors, so for every blocking edge s -> t, level(s) < level(t).
// Predecessors that are not in ids are ignored. The queue is seeded with
// zero in-degree nodes in input order.
//
// # Cycles
//
// The blocking relation produced by [ResolveDependencies] is acyclic. If a
// caller passes a cyclic relation, nodes on the cycle never reach zero
// in-degree; they are placed at level 0 and listed in Unordered.
//
// # Performance
//
// Time complexity is O(V + E). Space complexity is O(V + E) for the
// successor lists.
func AssignLevels(ids []string, blocking map[string][]string) Levels {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	inDegree := make(map[string]int, len(ids))
	succ := make(map[string][]string, len(ids))
	for _, id := range ids {
		for _, src := range blocking[id] {
			if !known[src] {
				continue
			}
			inDegree[id]++
			succ[src] = append(succ[src], id)
		}
	}

	levels := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		levels[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range succ[curr] {
			if lv := levels[curr] + 1; lv > levels[child] {
				levels[child] = lv
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	res := Levels{Level: levels}
	for _, id := range ids {
		if inDegree[id] > 0 {
			levels[id] = 0
			res.Unordered = append(res.Unordered, id)
		}
	}
	for _, lv := range levels {
		res.Max = max(res.Max, lv)
	}
	return res
}

// AssignLayers sets the level of every node in g from its edges, treating
// each edge as blocking. Use it on graphs that are already acyclic, such as
// the output of [BlockingGraph].
func AssignLayers(g *dag.DAG) Levels {
	blocking := make(map[string][]string, g.NodeCount())
	for _, e := range g.Edges() {
		blocking[e.To] = append(blocking[e.To], e.From)
	}
	lv := AssignLevels(g.NodeIDs(), blocking)
	g.SetLevels(lv.Level)
	return lv
}
