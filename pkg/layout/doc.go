// Package layout turns node levels into 2D coordinates for a node-link
// renderer.
//
// # Overview
//
// Levels come from the layering step (see dag/transform.AssignLevels). This
// package only deals with geometry: each level is a column (or row, with
// [DirectionVertical]) and nodes within a level are stacked by rank, which
// is their position among same-level nodes in input order.
//
// # Precedence
//
// [Compute] applies a fixed precedence per node:
//
//  1. Explicit: the author pinned a position in the definition.
//  2. Layered: the graph has edges, so (level, rank) is converted with
//     [Spacing].
//  3. Grid: the graph has no edges at all; nodes fill a square grid.
//
// # Spacing
//
// The defaults match the original workflow designer: 500 units between
// levels, 250 between ranks and 300 between grid cells.
package layout
