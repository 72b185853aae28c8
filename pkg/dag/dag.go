package dag

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/dagflow/pkg/layout"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Node payloads are forwarded untouched to the rendering layer.
type Metadata map[string]any

// Node represents a workflow step.
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID       string           // Unique identifier
	Kind     string           // Renderer node type (e.g. "custom")
	Workflow string           // Explicit workflow tag; empty means inferred from ID
	Level    int              // Layer assignment (0 = no blocking predecessors)
	Pos      *layout.Position // Author-supplied position, nil when absent
	Payload  Metadata         // Opaque renderer data (never nil after AddNode)
}

// HasExplicitPosition reports whether the definition pinned this node.
func (n Node) HasExplicitPosition() bool { return n.Pos != nil }

// EdgeAttrs holds renderer attributes that the graph carries but never
// interprets. Zero values mean "absent" and are omitted on export.
type EdgeAttrs struct {
	SourceHandle string
	TargetHandle string
	Style        map[string]any
	MarkerEnd    any
	Animated     *bool
}

// Clone returns a copy of a that shares no maps or pointers with it. A map
// MarkerEnd is copied; other MarkerEnd values are assumed immutable.
func (a EdgeAttrs) Clone() EdgeAttrs {
	c := a
	c.Style = maps.Clone(a.Style)
	if m, ok := a.MarkerEnd.(map[string]any); ok {
		c.MarkerEnd = maps.Clone(m)
	}
	if a.Animated != nil {
		v := *a.Animated
		c.Animated = &v
	}
	return c
}

// clone returns e with its attributes deep-copied.
func (e Edge) clone() Edge {
	e.Attrs = e.Attrs.Clone()
	return e
}

// Pair identifies an ordered (From, To) node pair.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Edge represents a directed relation between two nodes. Edges may express
// forward flow or a feedback loop; the DAG itself does not distinguish them.
type Edge struct {
	ID    string    // Stable edge identity
	From  string    // Source node ID
	To    string    // Target node ID
	Kind  string    // Renderer edge type, empty when not authored
	Attrs EdgeAttrs // Passthrough renderer attributes
}

// Pair returns the ordered endpoint pair of the edge.
func (e Edge) Pair() Pair { return Pair{From: e.From, To: e.To} }

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// DAG is a directed graph of workflow nodes that remembers insertion order.
// Despite the name it may hold cycles while a definition is being resolved;
// [DAG.Validate] reports whether it is acyclic.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent mutation; concurrent reads are fine.
type DAG struct {
	nodes    map[string]*Node
	order    []string            // node IDs in insertion order
	edges    []Edge              // edges in insertion order
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Payload is
// initialized to an empty map if nil.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Payload == nil {
		n.Payload = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return nil
}

// AddEdge appends a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist.
//
// Multiple edges between the same nodes are allowed; use
// transform.Dedupe to collapse them.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e.clone())
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes every edge from→to. No error is returned if the edge
// does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// SetEdges replaces the edge list and rebuilds adjacency. Every edge must
// reference existing nodes; on error the graph is left unchanged.
func (d *DAG) SetEdges(edges []Edge) error {
	for _, e := range edges {
		if _, ok := d.nodes[e.From]; !ok {
			return ErrUnknownSourceNode
		}
		if _, ok := d.nodes[e.To]; !ok {
			return ErrUnknownTargetNode
		}
	}
	d.edges = cloneEdges(edges)
	d.outgoing = make(map[string][]string, len(d.nodes))
	d.incoming = make(map[string][]string, len(d.nodes))
	for _, e := range d.edges {
		d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
		d.incoming[e.To] = append(d.incoming[e.To], e.From)
	}
	return nil
}

// SetLevels updates level assignments. Nodes not present in levels keep
// their current level.
func (d *DAG) SetLevels(levels map[string]int) {
	for id, lv := range levels {
		if n, ok := d.nodes[id]; ok {
			n.Level = lv
		}
	}
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// NodeIDs returns node IDs in insertion order.
func (d *DAG) NodeIDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order. Attributes are
// deep-copied, so callers may modify the result freely.
func (d *DAG) Edges() []Edge { return cloneEdges(d.edges) }

func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.clone()
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of nodes this node has edges to, in edge order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node, in edge
// order. The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// MaxLevel returns the highest level assigned to any node, or 0 if empty.
func (d *DAG) MaxLevel() int {
	maxLevel := 0
	for _, n := range d.nodes {
		maxLevel = max(maxLevel, n.Level)
	}
	return maxLevel
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// HasPath reports whether a directed walk from -> to exists. A node always
// reaches itself. Each call keeps its own visited set, so the search
// terminates on cyclic graphs and concurrent readers never share state.
func (d *DAG) HasPath(from, to string) bool {
	return Reachable(d.outgoing, from, to)
}

// Reachable reports whether to is reachable from from in the adjacency map.
// It runs an iterative depth-first search with a per-call visited set.
func Reachable(adj map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[curr] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that every edge connects existing nodes and that the graph is
// acyclic. Returns ErrInvalidEdgeEndpoint or ErrGraphHasCycle.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice, preserving order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
