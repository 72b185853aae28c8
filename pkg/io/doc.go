// Package io reads and writes workflow definitions and views as JSON files.
//
// # Overview
//
// Definitions come from a visual designer or are written by hand. They are
// stored either as a single document or as two files, one for nodes and one
// for edges:
//
//	workflows/plant-a.json        {"nodes": [...], "edges": [...]}
//	workflows/plant-b.nodes.json  [{"id": "N0"}, ...]
//	workflows/plant-b.edges.json  [{"source": "N0", "target": "MSAT1"}, ...]
//
// # Import
//
// Use [ImportDefinition] to read from disk, or [ReadDefinition] to read from
// any io.Reader:
//
//	def, err := io.ImportDefinition("plant-b.nodes.json", "plant-b.edges.json")
//
// The edges path is optional. When it is empty or the file does not exist,
// the definition has no explicit edges and the workflow builder chains the
// nodes in order.
//
// # Export
//
// [WriteView] and [ExportView] write the renderer view produced by a built
// workflow. [WriteDefinition] writes a definition back out, so import and
// export round-trip.
//
// # Errors
//
// Malformed JSON yields an INVALID_FORMAT error from pkg/errors. A missing
// definition file yields NOT_FOUND.
package io
