// Package cache provides content-addressed caching for built views and
// rendered artifacts.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are derived by a [Keyer] from a content hash of the input plus every
// option that affects the output. Two runs with the same definition and
// options always hit the same entry; changing any option misses.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ViewKey(cache.Hash(defJSON), cache.ViewKeyOpts{Workflow: "msat"})
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry type.
const (
	TTLDefinition = 5 * time.Minute
	TTLView       = 24 * time.Hour
	TTLArtifact   = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// DefinitionKey identifies a definition fetched from a named source.
	DefinitionKey(source, name string) string
	// ViewKey identifies a workflow view built from a definition hash.
	ViewKey(defHash string, opts ViewKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a view hash.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// ViewKeyOpts lists the options that change a built view.
type ViewKeyOpts struct {
	Workflow     string  `json:"workflow"`
	Policy       string  `json:"policy"`
	LevelSpacing float64 `json:"level_spacing"`
	RankSpacing  float64 `json:"rank_spacing"`
	GridSpacing  float64 `json:"grid_spacing"`
	Direction    string  `json:"direction"`
	NoChain      bool    `json:"no_chain"`
	Catalog      string  `json:"catalog"` // hash of the workflow catalog
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Detail bool   `json:"detail"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DefinitionKey implements Keyer.
func (DefaultKeyer) DefinitionKey(source, name string) string {
	return "def:" + source + ":" + name
}

// ViewKey implements Keyer.
func (DefaultKeyer) ViewKey(defHash string, opts ViewKeyOpts) string {
	return hashKey("view", defHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", viewHash, opts)
}
