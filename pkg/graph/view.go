package graph

import (
	"github.com/matzehuels/dagflow/pkg/layout"
)

// View is the renderer-facing projection of a built workflow: positioned
// nodes plus the edges between them. It is the JSON document served by the
// API and written by the build command.
type View struct {
	Workflow string     `json:"workflow,omitempty" bson:"workflow,omitempty"`
	Nodes    []ViewNode `json:"nodes" bson:"nodes"`
	Edges    []ViewEdge `json:"edges" bson:"edges"`
	MaxLevel int        `json:"maxLevel" bson:"max_level"`
}

// ViewNode is a positioned node.
type ViewNode struct {
	ID       string          `json:"id" bson:"id"`
	Type     string          `json:"type" bson:"type"`
	Position layout.Position `json:"position" bson:"position"`
	Data     map[string]any  `json:"data" bson:"data"`
	Level    int             `json:"level" bson:"level"`
	Workflow string          `json:"workflow,omitempty" bson:"workflow,omitempty"`
}

// ViewEdge is an edge record annotated with its role in the blocking
// relation. Feedback edges close a cycle and do not gate execution.
type ViewEdge struct {
	EdgeRecord `bson:",inline"`
	Feedback   bool `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// NodeIDs returns the IDs of the view's nodes in order.
func (v View) NodeIDs() []string {
	ids := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node returns the node with the given ID.
func (v View) Node(id string) (ViewNode, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ViewNode{}, false
}

// Levels groups node IDs by level, preserving node order within a level.
func (v View) Levels() map[int][]string {
	out := make(map[int][]string)
	for _, n := range v.Nodes {
		out[n.Level] = append(out[n.Level], n.ID)
	}
	return out
}
