// Package graph provides the serialization types for workflow definitions
// and renderer views.
//
// This package defines the wire format used for definition files, the HTTP
// API, the cache and the MongoDB definition store.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Definition], [NodeRecord], [EdgeRecord]: raw workflow input
//   - [View], [ViewNode], [ViewEdge]: positioned output for renderers
//   - pkg/dag.DAG: internal graph representation
//
// Use [NodeFromRecord], [EdgeFromRecord] and [FromDAG] to move between the
// record types and the DAG.
//
// # Definition Format
//
//	{
//	  "name": "plant-a",
//	  "nodes": [
//	    {"id": "N0", "type": "custom", "data": {"label": "Intake"}},
//	    {"id": "MSAT1", "position": {"x": 10, "y": 20}, "workflow": "msat"}
//	  ],
//	  "edges": [
//	    {"source": "N0", "target": "MSAT1", "animated": true}
//	  ]
//	}
//
// A bare array of node records is also accepted by [UnmarshalDefinition].
// Edge IDs are optional; [EdgeRecord.EdgeID] synthesizes "e-<source>-<target>".
//
// # Passthrough Attributes
//
// sourceHandle, targetHandle, style, markerEnd and animated are carried
// verbatim from input to view. Absent values stay absent in the output.
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
