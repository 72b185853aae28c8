// Package workflow builds workflow graphs from definitions and projects
// them onto named sub-workflows.
//
// # Overview
//
// [Build] is the entry point. It ingests a [graph.Definition], collapses
// duplicate edges, classifies cycle edges, assigns levels and computes
// positions, returning an immutable [Graph]:
//
//	g, err := workflow.Build(def, workflow.DefaultBuildOptions())
//	if err != nil {
//	    return err
//	}
//	view := g.Filter("msat")
//	deps := g.DependenciesFor("MSAT3", "msat")
//
// # Membership
//
// A [Catalog] decides which nodes belong to which workflow. Nodes may carry
// an explicit "workflow" tag ("common" shares the node with every
// workflow). Untagged nodes fall back to ID prefixes: by default "N*" and
// "Q0" are common, "MSAT*" belongs to msat and "RD*" to rd. The wildcard
// "all" selects everything.
//
// # Memoization
//
// Graphs are cheap to share but not free to build. A [Memo] keeps built
// graphs keyed by the definition's content hash. There is no package-level
// cache; each caller owns its Memo.
//
// [graph.Definition]: github.com/matzehuels/dagflow/pkg/graph.Definition
package workflow
