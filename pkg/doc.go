// Package pkg provides the core libraries for dagflow workflow graphs.
//
// # Overview
//
// dagflow turns workflow definitions (nodes plus optional edges) into
// layered, positioned graphs. It decides which dependencies block
// execution, keeps cycle-closing edges for display only, and projects the
// result onto named workflows whose common nodes are shared by all of them.
//
// # Architecture
//
// The typical data flow through dagflow:
//
//	Definition (JSON file, MongoDB document, remote server)
//	         ↓
//	    [io] / [source] (decode and resolve by name)
//	         ↓
//	    [workflow] (ingest, dedupe, resolve dependencies, layer, position)
//	         ↓
//	    [graph.View] (per-workflow projection)
//	         ↓
//	    [render/nodelink] (DOT, SVG, PNG, PDF)
//
// [pipeline] runs these stages with caching for the CLI and the HTTP API.
//
// # Quick Start
//
// Build a definition and query a node's blocking dependencies:
//
//	import (
//	    "github.com/matzehuels/dagflow/pkg/io"
//	    "github.com/matzehuels/dagflow/pkg/workflow"
//	)
//
//	def, _ := io.ImportDefinition("plant.nodes.json", "plant.edges.json")
//	g, _ := workflow.Build(def, workflow.DefaultBuildOptions())
//
//	g.DependenciesFor("MSAT2", "msat") // ["MSAT1"]
//	view := g.Filter("msat")           // nodes, edges, levels, positions
//
// # Main Packages
//
// ## Graph Core
//
// [dag] - Directed graph with insertion-ordered nodes and edges, and the
// reachability oracle used to detect cycle-closing edges.
//
// [dag/transform] - Edge deduplication, cycle policies, dependency
// resolution and Kahn layering.
//
// [layout] - Position computation: explicit positions first, then the
// layered (level, rank) grid, then a square grid for edge-less input.
//
// [workflow] - The built graph, workflow catalog and per-workflow filter.
//
// ## Serialization and Sources
//
// [graph] - JSON types for definitions and views.
//
// [io] - Reading definitions (single document, or separate node and edge
// files) and writing views.
//
// [source] - Named definition stores: local directory, MongoDB, or another
// dagflow server.
//
// ## Infrastructure
//
// [pipeline] - Build, filter and render with view and artifact caching.
//
// [cache] - File, Redis and null caches with TTLs and key derivation.
//
// [render] - Graphviz node-link rendering and SVG conversion.
//
// [observability] - Hooks for build, cache and HTTP metrics.
//
// [errors] - Coded errors shared by every layer.
//
// [httputil] - JSON responses and the error envelope of the HTTP API.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/layout
// [workflow]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/workflow
// [graph]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/io
// [source]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/httputil
//
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/render/nodelink
// [graph.View]: https://pkg.go.dev/github.com/matzehuels/dagflow/pkg/graph#View
package pkg
