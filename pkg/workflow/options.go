package workflow

import (
	"github.com/matzehuels/dagflow/pkg/dag/transform"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/layout"
)

// BuildOptions configures [Build]. The zero value is usable after
// [BuildOptions.SetDefaults].
type BuildOptions struct {
	// Policy selects how cycle edges are classified.
	Policy transform.CyclePolicy
	// Spacing converts levels and ranks into coordinates.
	Spacing layout.Spacing
	// Catalog decides workflow membership.
	Catalog Catalog
	// NoChain disables the fallback chain for definitions without edges.
	// Such definitions are then laid out on a grid.
	NoChain bool
}

// DefaultBuildOptions returns the options used when nothing is configured.
func DefaultBuildOptions() BuildOptions {
	opts := BuildOptions{Catalog: DefaultCatalog()}
	opts.SetDefaults()
	return opts
}

// SetDefaults fills unset fields.
func (o *BuildOptions) SetDefaults() {
	if o.Policy == "" {
		o.Policy = transform.PolicyFirstSeen
	}
	o.Spacing = o.Spacing.WithDefaults()
	if o.Catalog.Wildcard == "" && len(o.Catalog.Workflows) == 0 && len(o.Catalog.CommonIDs) == 0 && len(o.Catalog.CommonPrefixes) == 0 {
		o.Catalog = DefaultCatalog()
	}
	o.Catalog = o.Catalog.WithDefaults()
}

// Validate checks the options. Call SetDefaults first.
func (o *BuildOptions) Validate() error {
	if _, err := transform.ParsePolicy(string(o.Policy)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid build options")
	}
	if err := o.Spacing.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid build options")
	}
	return o.Catalog.Validate()
}
