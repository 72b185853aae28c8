package workflow

import (
	"slices"
	"strings"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/errors"
)

// Built-in catalog values.
const (
	// Wildcard is the workflow ID that selects every node.
	Wildcard = "all"
	// CommonTag is the explicit node tag that puts a node in every workflow.
	CommonTag = "common"
)

// Spec describes one named workflow.
type Spec struct {
	ID          string `toml:"id" json:"id"`
	Prefix      string `toml:"prefix" json:"prefix,omitempty"`
	Description string `toml:"description" json:"description,omitempty"`
}

// Catalog decides which nodes belong to which workflow.
//
// A node can declare its workflow explicitly through its "workflow" field.
// Untagged nodes fall back to the ID convention: IDs matching a common
// prefix or a common ID are shared by all workflows, and other IDs belong
// to the workflow whose prefix they start with.
type Catalog struct {
	Wildcard       string   `toml:"wildcard"`
	CommonPrefixes []string `toml:"common_prefixes"`
	CommonIDs      []string `toml:"common_ids"`
	Workflows      []Spec   `toml:"workflows"`
}

// DefaultCatalog returns the catalog used when none is configured: common
// nodes are "N*" and "Q0", the "msat" workflow owns "MSAT*" and the "rd"
// workflow owns "RD*".
func DefaultCatalog() Catalog {
	return Catalog{
		Wildcard:       Wildcard,
		CommonPrefixes: []string{"N"},
		CommonIDs:      []string{"Q0"},
		Workflows: []Spec{
			{ID: "msat", Prefix: "MSAT", Description: "Manufacturing science and technology"},
			{ID: "rd", Prefix: "RD", Description: "Research and development"},
		},
	}
}

// WithDefaults fills an empty wildcard from [DefaultCatalog]. Other fields
// are kept as configured, so an explicitly empty workflow list stays empty.
func (c Catalog) WithDefaults() Catalog {
	if c.Wildcard == "" {
		c.Wildcard = Wildcard
	}
	return c
}

// Validate checks workflow IDs for syntax and uniqueness.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Workflows))
	for _, w := range c.Workflows {
		if err := errors.ValidateWorkflowID(w.ID); err != nil {
			return err
		}
		if w.ID == c.Wildcard {
			return errors.New(errors.ErrCodeInvalidWorkflow, "workflow %q shadows the wildcard", w.ID)
		}
		if seen[w.ID] {
			return errors.New(errors.ErrCodeInvalidWorkflow, "duplicate workflow %q", w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}

// Lookup returns the catalog entry for a workflow ID.
func (c Catalog) Lookup(id string) (Spec, bool) {
	for _, w := range c.Workflows {
		if w.ID == id {
			return w, true
		}
	}
	return Spec{}, false
}

// IDs returns the wildcard followed by every configured workflow ID.
func (c Catalog) IDs() []string {
	ids := []string{c.Wildcard}
	for _, w := range c.Workflows {
		ids = append(ids, w.ID)
	}
	return ids
}

// IsCommon reports whether n is shared by every workflow.
func (c Catalog) IsCommon(n *dag.Node) bool {
	if n.Workflow != "" {
		return n.Workflow == CommonTag
	}
	return c.isCommonID(n.ID)
}

// Contains reports whether n belongs to the workflow. The wildcard contains
// every node and common nodes belong to every workflow. An explicit tag
// wins over the ID convention.
func (c Catalog) Contains(n *dag.Node, workflowID string) bool {
	if workflowID == c.Wildcard {
		return true
	}
	if n.Workflow != "" {
		return n.Workflow == CommonTag || n.Workflow == workflowID
	}
	if c.isCommonID(n.ID) {
		return true
	}
	spec, ok := c.Lookup(workflowID)
	return ok && spec.Prefix != "" && strings.HasPrefix(n.ID, spec.Prefix)
}

func (c Catalog) isCommonID(id string) bool {
	if slices.Contains(c.CommonIDs, id) {
		return true
	}
	for _, p := range c.CommonPrefixes {
		if p != "" && strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
