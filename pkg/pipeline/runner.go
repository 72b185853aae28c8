package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/observability"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// cachedView is the cache entry for a built view.
type cachedView struct {
	View        graph.View           `json:"view"`
	Diagnostics workflow.Diagnostics `json:"diagnostics"`
	Nodes       int                  `json:"nodes"`
	Edges       int                  `json:"edges"`
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → filter → render pipeline with caching.
//
// A residual cycle does not fail the run: the affected nodes are placed on
// level 0 and a warning is logged. Inspect Result.Diagnostics to detect it.
func (r *Runner) Execute(ctx context.Context, def graph.Definition, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	defHash, err := cache.HashJSON(def)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RunID:     uuid.NewString(),
		DefHash:   defHash,
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1+2: Build and filter
	buildStart := time.Now()
	entry, g, viewHit, err := r.viewWithCacheInfo(ctx, def, defHash, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.View = entry.View
	result.Diagnostics = entry.Diagnostics
	result.CacheInfo.ViewHit = viewHit
	result.Stats = Stats{
		NodeCount: entry.Nodes,
		EdgeCount: entry.Edges,
		MaxLevel:  entry.View.MaxLevel,
		BuildTime: time.Since(buildStart),
	}

	logger.Info("built workflow",
		"workflow", opts.Workflow,
		"nodes", len(entry.View.Nodes),
		"edges", len(entry.View.Edges),
		"cached", viewHit,
		"duration", result.Stats.BuildTime)
	if n := len(entry.Diagnostics.Excluded); n > 0 {
		logger.Debug("excluded cycle edges", "count", n)
	}
	if err := entry.Diagnostics.Err(); err != nil {
		logger.Warn("residual cycle", "err", err)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, entry.View, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the workflow graph for def and returns the
// projection selected by opts.Workflow. The boolean reports whether the
// view came from the cache, in which case the returned graph is nil.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, def graph.Definition, opts Options) (graph.View, *workflow.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.View{}, nil, false, err
	}
	defHash, err := cache.HashJSON(def)
	if err != nil {
		return graph.View{}, nil, false, err
	}
	entry, g, hit, err := r.viewWithCacheInfo(ctx, def, defHash, opts)
	return entry.View, g, hit, err
}

// Build builds the workflow graph without consulting the cache.
func (r *Runner) Build(ctx context.Context, def graph.Definition, opts Options) (*workflow.Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return build(ctx, def, opts)
}

func (r *Runner) viewWithCacheInfo(ctx context.Context, def graph.Definition, defHash string, opts Options) (cachedView, *workflow.Graph, bool, error) {
	cacheKey := r.Keyer.ViewKey(defHash, opts.ViewKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		var entry cachedView
		if err := cache.GetJSON(ctx, r.Cache, cacheKey, &entry); err == nil {
			observability.Cache().OnCacheHit(ctx, "view")
			return entry, nil, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "view")
	}

	g, err := build(ctx, def, opts)
	if err != nil {
		return cachedView{}, nil, false, err
	}
	entry := cachedView{
		View:        g.Filter(opts.Workflow),
		Diagnostics: g.Diagnostics(),
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
	}

	if err := cache.SetJSON(ctx, r.Cache, cacheKey, entry, cache.TTLView); err != nil {
		r.Logger.Debug("cache write failed", "key", cacheKey, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "view", len(entry.View.Nodes))
	}
	return entry, g, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, v graph.View, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	viewHash, err := cache.HashJSON(v)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, v, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, v graph.View, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, v, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func build(ctx context.Context, def graph.Definition, opts Options) (*workflow.Graph, error) {
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, def.Name, len(def.Nodes))
	start := time.Now()

	g, err := workflow.Build(def, opts.BuildOptions())

	var stats observability.BuildStats
	if g != nil {
		d := g.Diagnostics()
		stats = observability.BuildStats{
			Nodes:         g.NodeCount(),
			Edges:         g.EdgeCount(),
			Excluded:      len(d.Excluded),
			Duplicates:    d.DuplicatesDropped,
			Levels:        g.MaxLevel() + 1,
			ResidualCycle: len(d.Unordered) > 0,
		}
	}
	hooks.OnBuildComplete(ctx, def.Name, stats, time.Since(start), err)
	return g, err
}
