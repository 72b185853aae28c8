// Package transform resolves a raw workflow graph into an ordered one.
//
// # Overview
//
// Workflow definitions are authored by hand or exported from a visual
// designer. They routinely contain repeated edges and feedback loops
// (retry paths, "return to review" arrows). This package turns such a graph
// into something a layout engine can order:
//
//   - [Dedupe] collapses repeated (source, target) edges, first one wins
//   - [ResolveDependencies] splits edges into all and blocking dependencies
//   - [AssignLevels] places nodes on levels by longest path over blocking edges
//
// [Normalize] runs the three steps in order.
//
// # Cycle Classification
//
// An edge s -> t is non-blocking when t can already reach s, because
// honouring it would make s wait on itself. [HasPath] is the reachability
// oracle. Two policies decide which edge set the oracle sees:
//
//   - [PolicyFirstSeen] (default) grows the blocking set edge by edge in
//     definition order. In A->B->C->A only C->A is dropped.
//   - [PolicyStrict] checks against all edges at once. Every edge inside a
//     strongly connected component (see [Components]) is dropped.
//
// Both policies guarantee that the blocking relation is acyclic, and
// neither removes edges from the graph: excluded edges stay visible to the
// renderer.
//
// # Layer Assignment
//
// [AssignLevels] is Kahn's algorithm over the blocking relation. Nodes
// without blocking predecessors sit at level 0; every other node sits one
// past its deepest predecessor. Nodes left on a residual cycle are reported
// in [Levels].Unordered and placed at level 0.
package transform
