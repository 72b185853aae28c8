// Package source provides named stores of workflow definitions.
//
// # Overview
//
// A [Source] lists and loads [graph.Definition] values by name. The CLI and
// HTTP server resolve the definition they build through a Source, so the
// same commands work against a directory of JSON files, a MongoDB
// collection or another server:
//
//   - [github.com/matzehuels/dagflow/pkg/source/local]: one or two JSON
//     files per definition in a directory
//   - [github.com/matzehuels/dagflow/pkg/source/mongo]: one document per
//     definition in a MongoDB collection
//   - [github.com/matzehuels/dagflow/pkg/source/remote]: the definitions
//     API of another dagflow server
//
// # Caching
//
// Wrap a remote source with [NewCached] to keep fetched definitions in a
// [cache.Cache] for [cache.TTLDefinition]:
//
//	src := source.NewCached(mongoSrc, redisCache, nil)
//	def, err := src.Get(ctx, "onboarding")
package source

import (
	"context"
	"time"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/observability"
)

// Source is a named store of workflow definitions.
//
// Get returns a NOT_FOUND error when no definition has the given name, and
// an INVALID_INPUT error when the name itself is unusable.
type Source interface {
	// Kind identifies the backend ("local", "mongo", "remote") in cache keys and logs.
	Kind() string
	// List returns the names of all stored definitions in sorted order.
	List(ctx context.Context) ([]string, error)
	// Get loads one definition by name.
	Get(ctx context.Context, name string) (graph.Definition, error)
}

// NotFound returns the error sources report for a missing definition.
func NotFound(kind, name string) error {
	return errors.New(errors.ErrCodeNotFound, "definition %q not found in %s source", name, kind)
}

// Cached wraps a Source with a definition cache. List is never cached.
type Cached struct {
	Source
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps src. A nil keyer uses [cache.NewDefaultKeyer].
func NewCached(src Source, c cache.Cache, keyer cache.Keyer) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Cached{Source: src, cache: c, keyer: keyer, ttl: cache.TTLDefinition}
}

// Get returns the cached definition or loads it from the wrapped source.
// Cache backend errors degrade to a direct load.
func (s *Cached) Get(ctx context.Context, name string) (graph.Definition, error) {
	if err := errors.ValidateDefinitionName(name); err != nil {
		return graph.Definition{}, err
	}
	key := s.keyer.DefinitionKey(s.Kind(), name)

	var def graph.Definition
	if err := cache.GetJSON(ctx, s.cache, key, &def); err == nil {
		observability.Cache().OnCacheHit(ctx, "definition")
		return def, nil
	}
	observability.Cache().OnCacheMiss(ctx, "definition")

	def, err := s.Source.Get(ctx, name)
	if err != nil {
		return graph.Definition{}, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, def, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "definition", len(def.Nodes))
	}
	return def, nil
}

// Invalidate drops a cached definition.
func (s *Cached) Invalidate(ctx context.Context, name string) error {
	return s.cache.Delete(ctx, s.keyer.DefinitionKey(s.Kind(), name))
}
