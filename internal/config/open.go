package config

import (
	"context"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/pipeline"
	"github.com/matzehuels/dagflow/pkg/source"
	"github.com/matzehuels/dagflow/pkg/source/local"
	"github.com/matzehuels/dagflow/pkg/source/mongo"
	"github.com/matzehuels/dagflow/pkg/source/remote"
)

// OpenCache creates the configured cache backend. With noCache set, or the
// "none" backend, caching is disabled. The configured TTL caps every entry.
func (c *Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Cache.Backend == CacheNone {
		return cache.NewNullCache(), nil
	}

	var (
		backend cache.Cache
		err     error
	)
	switch c.Cache.Backend {
	case CacheRedis:
		backend, err = cache.NewRedisCache(ctx, c.Cache.RedisURL, c.Cache.Prefix)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		backend, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	return cache.WithMaxTTL(backend, c.Cache.TTL.Duration), nil
}

// Keyer returns the cache keyer, scoped by the cache prefix for file caches.
// Redis caches apply the prefix themselves.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix != "" && c.Cache.Backend != CacheRedis {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// OpenSource creates the configured definition source. Remote sources are
// wrapped with the definition cache. The returned close function releases
// the backend and is never nil.
func (c *Config) OpenSource(ctx context.Context, defCache cache.Cache) (source.Source, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch c.Source.Kind {
	case SourceMongo:
		m, err := mongo.Connect(ctx, c.Source.MongoURI, c.Source.Database, c.Source.Collection)
		if err != nil {
			return nil, noop, err
		}
		return source.NewCached(m, defCache, c.Keyer()), m.Close, nil
	case SourceRemote:
		r, err := remote.New(c.Source.URL, c.Source.Token)
		if err != nil {
			return nil, noop, err
		}
		return source.NewCached(r, defCache, c.Keyer()), noop, nil
	default:
		l, err := local.New(c.Source.Dir)
		if err != nil {
			return nil, noop, err
		}
		return l, noop, nil
	}
}

// PipelineOptions returns per-run options seeded from the file settings.
// Callers override individual fields from flags or query parameters.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Policy:       c.Policy,
		LevelSpacing: c.Layout.Level,
		RankSpacing:  c.Layout.Rank,
		GridSpacing:  c.Layout.Grid,
		Direction:    string(c.Layout.Direction),
		NoChain:      c.NoChain,
		Catalog:      c.Catalog,
	}
}
