// Package pipeline provides the build → filter → render pipeline for dagflow.
//
// This package implements the complete pipeline that is used by the CLI and
// the HTTP server. By centralizing this logic, both entry points apply the
// same defaults, cache keys and diagnostics.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Ingest a definition, resolve dependencies and compute levels
//  2. Filter: Project the built graph onto one workflow as a [graph.View]
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Workflow: "msat",
//	    Formats:  []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, def, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagflow/pkg/cache"
	"github.com/matzehuels/dagflow/pkg/dag/transform"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/layout"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats. JSON, DOT and SVG are rendered in
// process; PNG and PDF need rsvg-convert.
const (
	FormatJSON = graph.FormatJSON
	FormatDOT  = graph.FormatDOT
	FormatSVG  = graph.FormatSVG
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatJSON

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Policy       string  `json:"policy,omitempty"`
	LevelSpacing float64 `json:"level_spacing,omitempty"`
	RankSpacing  float64 `json:"rank_spacing,omitempty"`
	GridSpacing  float64 `json:"grid_spacing,omitempty"`
	Direction    string  `json:"direction,omitempty"`
	NoChain      bool    `json:"no_chain,omitempty"`

	// Filter options
	Workflow string `json:"workflow,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Detail  bool     `json:"detail,omitempty"`

	// Refresh bypasses cached views and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Catalog workflow.Catalog `json:"-"`
	Logger  *log.Logger      `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// DefHash is the content hash of the input definition.
	DefHash string

	// Graph is the built workflow. It is nil when the view came from the cache.
	Graph *workflow.Graph

	// View is the workflow projection that was rendered.
	View graph.View

	// Diagnostics reports repairs made while building.
	Diagnostics workflow.Diagnostics

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int           `json:"nodes"`
	EdgeCount  int           `json:"edges"`
	MaxLevel   int           `json:"maxLevel"`
	BuildTime  time.Duration `json:"buildTime"`
	RenderTime time.Duration `json:"renderTime"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ViewHit   bool // Whether the view came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	bo := o.BuildOptions()
	bo.SetDefaults()
	o.Policy = string(bo.Policy)
	o.LevelSpacing, o.RankSpacing, o.GridSpacing = bo.Spacing.Level, bo.Spacing.Rank, bo.Spacing.Grid
	o.Direction = string(bo.Spacing.Direction)
	o.Catalog = bo.Catalog
	if o.Workflow == "" {
		o.Workflow = workflow.Wildcard
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options. Call SetDefaults first.
func (o *Options) Validate() error {
	bo := o.BuildOptions()
	if err := bo.Validate(); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults applies defaults and validates in one step.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// Spacing returns the layout spacing with defaults applied.
func (o *Options) Spacing() layout.Spacing {
	return layout.Spacing{
		Level:     o.LevelSpacing,
		Rank:      o.RankSpacing,
		Grid:      o.GridSpacing,
		Direction: layout.Direction(o.Direction),
	}.WithDefaults()
}

// BuildOptions converts the pipeline options into workflow build options.
func (o *Options) BuildOptions() workflow.BuildOptions {
	return workflow.BuildOptions{
		Policy:  transform.CyclePolicy(o.Policy),
		Spacing: o.Spacing(),
		Catalog: o.Catalog,
		NoChain: o.NoChain,
	}
}

// ViewKeyOpts returns cache key options for a built view.
func (o *Options) ViewKeyOpts() cache.ViewKeyOpts {
	sp := o.Spacing()
	return cache.ViewKeyOpts{
		Workflow:     o.Workflow,
		Policy:       o.Policy,
		LevelSpacing: sp.Level,
		RankSpacing:  sp.Rank,
		GridSpacing:  sp.Grid,
		Direction:    string(sp.Direction),
		NoChain:      o.NoChain,
		Catalog:      catalogHash(o.Catalog),
	}
}

func catalogHash(c workflow.Catalog) string {
	h, err := cache.HashJSON(c)
	if err != nil {
		return ""
	}
	return h
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detail: o.Detail}
}
