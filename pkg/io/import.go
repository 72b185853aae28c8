package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
)

// maxDefinitionSize bounds how much ReadDefinition will buffer.
const maxDefinitionSize = 32 << 20

// ReadDefinition decodes a workflow definition from r.
//
// The input is either a document with "nodes" and optional "edges" arrays,
// or a bare array of node records:
//
//	{"nodes": [{"id": "N0"}, {"id": "MSAT1"}], "edges": [{"source": "N0", "target": "MSAT1"}]}
//	[{"id": "N0"}, {"id": "MSAT1"}]
//
// Malformed input returns an INVALID_FORMAT error. ReadDefinition does not
// validate node IDs or edge endpoints; that happens when the definition is
// built. ReadDefinition does not close r.
func ReadDefinition(r io.Reader) (graph.Definition, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDefinitionSize+1))
	if err != nil {
		return graph.Definition{}, fmt.Errorf("read: %w", err)
	}
	if len(data) > maxDefinitionSize {
		return graph.Definition{}, errors.New(errors.ErrCodeInvalidInput, "definition exceeds %d bytes", maxDefinitionSize)
	}
	def, err := graph.UnmarshalDefinition(data)
	if err != nil {
		return graph.Definition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid definition")
	}
	return def, nil
}

// ReadEdges decodes a bare JSON array of edge records from r.
func ReadEdges(r io.Reader) ([]graph.EdgeRecord, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDefinitionSize))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	edges, err := graph.UnmarshalEdges(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid edge list")
	}
	return edges, nil
}

// ImportDefinition reads a definition file at nodesPath and, when edgesPath
// is non-empty, replaces its edges with the edge array stored there.
//
// A missing edges file is not an error: the definition keeps whatever
// edges it had (possibly none, which triggers the fallback chain when the
// workflow is built). Any other failure to open either file is returned
// wrapped with the path for context.
func ImportDefinition(nodesPath, edgesPath string) (graph.Definition, error) {
	if err := errors.ValidatePath(nodesPath); err != nil {
		return graph.Definition{}, err
	}
	f, err := os.Open(nodesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.Definition{}, errors.Wrap(errors.ErrCodeNotFound, err, "definition %s", nodesPath)
		}
		return graph.Definition{}, fmt.Errorf("open %s: %w", nodesPath, err)
	}
	defer f.Close()

	def, err := ReadDefinition(f)
	if err != nil {
		return graph.Definition{}, fmt.Errorf("%s: %w", nodesPath, err)
	}
	if edgesPath == "" {
		return def, nil
	}

	ef, err := os.Open(edgesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return graph.Definition{}, fmt.Errorf("open %s: %w", edgesPath, err)
	}
	defer ef.Close()

	edges, err := ReadEdges(ef)
	if err != nil {
		return graph.Definition{}, fmt.Errorf("%s: %w", edgesPath, err)
	}
	def.Edges = edges
	return def, nil
}
