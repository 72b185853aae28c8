package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Definition Serialization API
// =============================================================================

// UnmarshalDefinition decodes a definition from JSON. Two shapes are
// accepted: a {"nodes": [...], "edges": [...]} document, or a bare array of
// node records (no edges).
func UnmarshalDefinition(data []byte) (Definition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Definition{}, fmt.Errorf("decode: empty document")
	}
	if trimmed[0] == '[' {
		var nodes []NodeRecord
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return Definition{}, fmt.Errorf("decode nodes: %w", err)
		}
		return Definition{Nodes: nodes}, nil
	}
	var def Definition
	if err := json.Unmarshal(trimmed, &def); err != nil {
		return Definition{}, fmt.Errorf("decode: %w", err)
	}
	return def, nil
}

// UnmarshalEdges decodes a bare array of edge records.
func UnmarshalEdges(data []byte) ([]EdgeRecord, error) {
	var edges []EdgeRecord
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("decode edges: %w", err)
	}
	return edges, nil
}

// MarshalDefinition encodes a definition as indented JSON.
func MarshalDefinition(def Definition) ([]byte, error) {
	return marshalIndent(def)
}

// =============================================================================
// View Serialization API
// =============================================================================

// MarshalView encodes a view as indented JSON.
func MarshalView(v View) ([]byte, error) {
	return marshalIndent(v)
}

// UnmarshalView decodes a view from JSON.
func UnmarshalView(data []byte) (View, error) {
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, fmt.Errorf("decode view: %w", err)
	}
	return v, nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
