package workflow

import (
	"maps"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/graph"
)

// Members returns the IDs of the nodes that belong to a workflow, in input
// order. An empty ID selects the wildcard. An unknown workflow yields the
// common nodes only.
func (w *Graph) Members(workflowID string) []string {
	if workflowID == "" {
		workflowID = w.catalog.Wildcard
	}
	var ids []string
	for _, n := range w.g.Nodes() {
		if w.catalog.Contains(n, workflowID) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Filter projects the graph onto one workflow: the member nodes in input
// order, and the edges whose endpoints are both members. The result is an
// induced subgraph, so every edge endpoint is present in the node list.
func (w *Graph) Filter(workflowID string) graph.View {
	if workflowID == "" {
		workflowID = w.catalog.Wildcard
	}
	members := w.memberSet(workflowID)

	view := graph.View{
		Workflow: workflowID,
		Nodes:    []graph.ViewNode{},
		Edges:    []graph.ViewEdge{},
	}
	for _, n := range w.g.Nodes() {
		if !members[n.ID] {
			continue
		}
		view.Nodes = append(view.Nodes, w.viewNode(n))
		view.MaxLevel = max(view.MaxLevel, n.Level)
	}
	for _, e := range w.g.Edges() {
		if members[e.From] && members[e.To] {
			view.Edges = append(view.Edges, graph.ViewEdge{
				EdgeRecord: graph.RecordFromEdge(e),
				Feedback:   w.feedback[e.Pair()],
			})
		}
	}
	return view
}

// DependenciesFor returns the blocking predecessors of nodeID that belong
// to the workflow, in edge order. Unknown nodes and unknown workflows are
// not errors; they simply yield fewer dependencies.
func (w *Graph) DependenciesFor(nodeID, workflowID string) []string {
	if workflowID == "" {
		workflowID = w.catalog.Wildcard
	}
	members := w.memberSet(workflowID)
	out := []string{}
	for _, src := range w.deps.Blocking[nodeID] {
		if members[src] {
			out = append(out, src)
		}
	}
	return out
}

func (w *Graph) memberSet(workflowID string) map[string]bool {
	set := make(map[string]bool, w.g.NodeCount())
	for _, n := range w.g.Nodes() {
		if w.catalog.Contains(n, workflowID) {
			set[n.ID] = true
		}
	}
	return set
}

func (w *Graph) viewNode(n *dag.Node) graph.ViewNode {
	data := maps.Clone(n.Payload)
	if data == nil {
		data = map[string]any{}
	}
	return graph.ViewNode{
		ID:       n.ID,
		Type:     n.Kind,
		Position: w.positions.Positions[n.ID],
		Data:     data,
		Level:    n.Level,
		Workflow: n.Workflow,
	}
}
