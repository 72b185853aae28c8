package transform

import "github.com/matzehuels/dagflow/pkg/dag"

// Resolution bundles the dependency maps and levels computed by [Normalize].
type Resolution struct {
	Dependencies
	Levels
}

// Normalize prepares a raw workflow graph for layout: it collapses duplicate
// edges, classifies cycle edges and assigns a level to every node. Node
// levels in g are updated in place.
func Normalize(g *dag.DAG, opts NormalizeOptions) (Resolution, TransformResult) {
	var res TransformResult
	if !opts.KeepDuplicates {
		res.DuplicatesRemoved = Dedupe(g)
	}

	deps := ResolveDependencies(g, opts.Policy)
	levels := AssignLevels(g.NodeIDs(), deps.Blocking)
	g.SetLevels(levels.Level)

	res.CycleEdgesExcluded = len(deps.Excluded)
	res.UnorderedNodes = len(levels.Unordered)
	res.MaxLevel = levels.Max
	return Resolution{Dependencies: deps, Levels: levels}, res
}
