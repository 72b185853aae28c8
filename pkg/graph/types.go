package graph

import (
	"maps"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/layout"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Renderer kinds applied when a definition leaves them out.
const (
	DefaultNodeKind  = "custom"
	FallbackEdgeKind = "default"
)

// Output formats understood by the render and build commands.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// =============================================================================
// Definition - Workflow Input
// =============================================================================

// Definition is a raw workflow as authored: an ordered node list and an
// optional ordered edge list. A nil or empty Edges slice means "no explicit
// edges", in which case nodes are chained in input order.
type Definition struct {
	Name  string       `json:"name,omitempty" bson:"name,omitempty"`
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges,omitempty" bson:"edges,omitempty"`
}

// HasEdges reports whether the definition declares any edge.
func (d Definition) HasEdges() bool { return len(d.Edges) > 0 }

// NodeRecord is one node of a [Definition].
type NodeRecord struct {
	ID       string           `json:"id" bson:"id"`
	Type     string           `json:"type,omitempty" bson:"type,omitempty"`
	Position *layout.Position `json:"position,omitempty" bson:"position,omitempty"`
	Data     map[string]any   `json:"data,omitempty" bson:"data,omitempty"`
	Workflow string           `json:"workflow,omitempty" bson:"workflow,omitempty"`
}

// EdgeRecord is one edge of a [Definition]. Handles, style, marker and
// animation are renderer attributes carried through unchanged.
type EdgeRecord struct {
	ID           string         `json:"id,omitempty" bson:"id,omitempty"`
	Source       string         `json:"source" bson:"source"`
	Target       string         `json:"target" bson:"target"`
	Type         string         `json:"type,omitempty" bson:"type,omitempty"`
	SourceHandle string         `json:"sourceHandle,omitempty" bson:"source_handle,omitempty"`
	TargetHandle string         `json:"targetHandle,omitempty" bson:"target_handle,omitempty"`
	Style        map[string]any `json:"style,omitempty" bson:"style,omitempty"`
	MarkerEnd    any            `json:"markerEnd,omitempty" bson:"marker_end,omitempty"`
	Animated     *bool          `json:"animated,omitempty" bson:"animated,omitempty"`
}

// EdgeID returns the record's ID, or the synthesized "e-<source>-<target>"
// form when it has none.
func (e EdgeRecord) EdgeID() string {
	if e.ID != "" {
		return e.ID
	}
	return SynthesizeEdgeID(e.Source, e.Target)
}

// SynthesizeEdgeID builds the stable ID given to edges that arrive without one.
func SynthesizeEdgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// =============================================================================
// DAG ↔ Record Conversion
// =============================================================================

// NodeFromRecord converts a record to a DAG node. The payload is copied so
// the DAG never aliases caller data.
func NodeFromRecord(r NodeRecord) dag.Node {
	n := dag.Node{
		ID:       r.ID,
		Kind:     r.Type,
		Workflow: r.Workflow,
		Payload:  copyMap(r.Data),
	}
	if n.Kind == "" {
		n.Kind = DefaultNodeKind
	}
	if r.Position != nil {
		p := *r.Position
		n.Pos = &p
	}
	return n
}

// RecordFromNode converts a DAG node back to its record form.
func RecordFromNode(n *dag.Node) NodeRecord {
	r := NodeRecord{
		ID:       n.ID,
		Type:     n.Kind,
		Workflow: n.Workflow,
		Data:     copyMap(n.Payload),
	}
	if n.Pos != nil {
		p := *n.Pos
		r.Position = &p
	}
	return r
}

// EdgeFromRecord converts a record to a DAG edge, synthesizing the ID when
// missing.
func EdgeFromRecord(r EdgeRecord) dag.Edge {
	return dag.Edge{
		ID:   r.EdgeID(),
		From: r.Source,
		To:   r.Target,
		Kind: r.Type,
		Attrs: dag.EdgeAttrs{
			SourceHandle: r.SourceHandle,
			TargetHandle: r.TargetHandle,
			Style:        r.Style,
			MarkerEnd:    r.MarkerEnd,
			Animated:     r.Animated,
		}.Clone(),
	}
}

// RecordFromEdge converts a DAG edge back to its record form.
func RecordFromEdge(e dag.Edge) EdgeRecord {
	a := e.Attrs.Clone()
	return EdgeRecord{
		ID:           e.ID,
		Source:       e.From,
		Target:       e.To,
		Type:         e.Kind,
		SourceHandle: a.SourceHandle,
		TargetHandle: a.TargetHandle,
		Style:        a.Style,
		MarkerEnd:    a.MarkerEnd,
		Animated:     a.Animated,
	}
}

// FromDAG exports a DAG as a definition, keeping insertion order.
func FromDAG(name string, g *dag.DAG) Definition {
	def := Definition{Name: name, Nodes: make([]NodeRecord, 0, g.NodeCount())}
	for _, n := range g.Nodes() {
		def.Nodes = append(def.Nodes, RecordFromNode(n))
	}
	for _, e := range g.Edges() {
		def.Edges = append(def.Edges, RecordFromEdge(e))
	}
	return def
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
