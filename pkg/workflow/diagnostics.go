package workflow

import (
	"strings"

	"github.com/matzehuels/dagflow/pkg/dag"
	"github.com/matzehuels/dagflow/pkg/errors"
)

// Diagnostics records what [Build] had to repair in a definition. None of
// these conditions fail a build.
type Diagnostics struct {
	// DuplicatesDropped counts repeated (source, target) edges.
	DuplicatesDropped int `json:"duplicatesDropped"`
	// Chained is true when the fallback chain supplied the edges.
	Chained bool `json:"chained,omitempty"`
	// Excluded lists edges kept for display but not blocking.
	Excluded []dag.Pair `json:"excluded,omitempty"`
	// Unordered lists nodes left on a residual cycle, placed at level 0.
	Unordered []string `json:"unordered,omitempty"`
}

// HasCycles reports whether any edge was excluded from the blocking
// relation.
func (d Diagnostics) HasCycles() bool { return len(d.Excluded) > 0 }

// Err returns a RESIDUAL_CYCLE error when layering could not order some
// nodes, and nil otherwise.
func (d Diagnostics) Err() error {
	if len(d.Unordered) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeResidualCycle, "could not order %d node(s): %s",
		len(d.Unordered), strings.Join(d.Unordered, ", "))
}

func (d Diagnostics) clone() Diagnostics {
	out := d
	out.Excluded = append([]dag.Pair(nil), d.Excluded...)
	out.Unordered = append([]string(nil), d.Unordered...)
	return out
}
