package transform

// TransformResult summarises what [Normalize] did to a graph. It is useful
// for logging and for the diagnostics attached to a built workflow.
type TransformResult struct {
	// DuplicatesRemoved is the number of repeated (From, To) edges dropped.
	DuplicatesRemoved int

	// CycleEdgesExcluded is the number of edges kept for display but left
	// out of the blocking relation.
	CycleEdgesExcluded int

	// UnorderedNodes is the number of nodes the layering could not order.
	// It is always zero when the blocking relation came from
	// [ResolveDependencies].
	UnorderedNodes int

	// MaxLevel is the deepest level assigned.
	MaxLevel int
}

// NormalizeOptions configures [Normalize].
//
// The zero value deduplicates edges and uses [PolicyFirstSeen].
type NormalizeOptions struct {
	// Policy selects the cycle classification. Empty means PolicyFirstSeen.
	Policy CyclePolicy

	// KeepDuplicates leaves repeated edges in the graph. Dependency maps
	// still count each pair once.
	KeepDuplicates bool
}
