package workflow

import (
	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
)

// Ingest converts a definition into a DAG, keeping input order.
//
// Node IDs must be valid and unique (INVALID_NODE otherwise). When the
// definition has no edges and chain is true, consecutive nodes are linked
// in input order with kind "default". Edge IDs are synthesized as
// "e-<source>-<target>" when missing. An edge naming an unknown node fails
// with DANGLING_EDGE. Duplicate edges are kept; see transform.Dedupe.
func Ingest(def graph.Definition, chain bool) (*dag.DAG, error) {
	g := dag.New(dag.Metadata{"name": def.Name})

	for i, rec := range def.Nodes {
		if err := errors.ValidateNodeID(rec.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNode, err, "node %d", i)
		}
		if err := g.AddNode(graph.NodeFromRecord(rec)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNode, err, "node %q", rec.ID)
		}
	}

	if !def.HasEdges() {
		if chain {
			addChain(g)
		}
		return g, nil
	}

	for _, rec := range def.Edges {
		e := graph.EdgeFromRecord(rec)
		if err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDanglingEdge, err, "edge %s (%s -> %s)", e.ID, e.From, e.To)
		}
	}
	return g, nil
}

func addChain(g *dag.DAG) {
	ids := g.NodeIDs()
	for i := 0; i+1 < len(ids); i++ {
		_ = g.AddEdge(dag.Edge{
			ID:   graph.SynthesizeEdgeID(ids[i], ids[i+1]),
			From: ids[i],
			To:   ids[i+1],
			Kind: graph.FallbackEdgeKind,
		})
	}
}
