// Package dag provides the ordered directed graph that backs workflow
// construction.
//
// # Overview
//
// A workflow definition arrives as an ordered list of nodes and edges. The
// order matters: it drives the fallback edge chain, first-seen edge
// deduplication, cycle classification and the rank of nodes within a layout
// level. [DAG] therefore keeps nodes and edges in insertion order, unlike a
// plain map-backed graph.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "N0"})
//	g.AddNode(dag.Node{ID: "MSAT1"})
//	g.AddEdge(dag.Edge{ID: "e-N0-MSAT1", From: "N0", To: "MSAT1"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.HasPath] and
// related methods. [DAG.Validate] verifies that every edge has valid
// endpoints and that the graph is acyclic.
//
// # Cycles
//
// While a raw definition is being resolved the graph may contain cycles
// (feedback loops, retries). [DAG.HasPath] and [Reachable] carry a per-call
// visited set so path queries terminate on such graphs. The
// [transform] subpackage decides which edges are blocking.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. Once built, a DAG can
// be read from multiple goroutines.
//
// [transform]: github.com/matzehuels/dagflow/pkg/dag/transform
package dag
