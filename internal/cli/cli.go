package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/internal/config"
	"github.com/matzehuels/dagflow/pkg/buildinfo"
	"github.com/matzehuels/dagflow/pkg/errors"
	"github.com/matzehuels/dagflow/pkg/graph"
	dfio "github.com/matzehuels/dagflow/pkg/io"
	"github.com/matzehuels/dagflow/pkg/pipeline"
	"github.com/matzehuels/dagflow/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dagflow"

	// stdinArg selects standard input as the definition.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	verbose    bool

	cfg   *config.Config
	stdin io.Reader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdin:  os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dagflow builds and lays out workflow dependency graphs",
		Long: `dagflow turns workflow definitions (nodes plus optional edges) into
layered, positioned graphs. It resolves which dependencies block execution,
keeps cycle-closing edges for display, and filters the result per workflow.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/dagflow/dagflow.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the view and artifact cache")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.workflowsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	backend, err := cfg.OpenCache(ctx, c.noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, cfg.Keyer(), c.Logger), nil
}

// pipelineOptions returns the configured defaults for a run.
func (c *CLI) pipelineOptions() (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.PipelineOptions()
	opts.Logger = c.Logger
	return opts, nil
}

// =============================================================================
// Definition Loading
// =============================================================================

// loadDefinition resolves a definition argument. "-" reads standard input,
// an existing path is read from disk (with edgesPath replacing its edges
// when given), and anything else is looked up by name in the configured
// source.
func (c *CLI) loadDefinition(ctx context.Context, arg, edgesPath string) (graph.Definition, error) {
	logger := loggerFromContext(ctx)

	if arg == stdinArg {
		def, err := dfio.ReadDefinition(c.stdin)
		if err != nil {
			return def, err
		}
		if edgesPath != "" {
			return withEdgesFile(def, edgesPath)
		}
		return def, nil
	}

	if _, err := os.Stat(arg); err == nil {
		if err := errors.ValidatePath(arg); err != nil {
			return graph.Definition{}, err
		}
		logger.Debug("reading definition", "path", arg, "edges", edgesPath)
		def, err := dfio.ImportDefinition(arg, edgesPath)
		if err != nil {
			return def, err
		}
		if def.Name == "" {
			def.Name = definitionName(arg)
		}
		return def, nil
	}

	cfg, err := c.config()
	if err != nil {
		return graph.Definition{}, err
	}
	backend, err := cfg.OpenCache(ctx, c.noCache)
	if err != nil {
		return graph.Definition{}, err
	}
	defer backend.Close()

	src, closeSrc, err := cfg.OpenSource(ctx, backend)
	if err != nil {
		return graph.Definition{}, err
	}
	defer closeSrc(ctx)

	logger.Debug("resolving definition", "name", arg, "source", src.Kind())
	def, err := src.Get(ctx, arg)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return def, errors.Wrap(errors.ErrCodeNotFound, err, "%s is neither a file nor a %s definition", arg, src.Kind())
	}
	return def, err
}

// openSource opens the configured definition source for commands that list
// or serve definitions.
func (c *CLI) openSource(ctx context.Context) (source.Source, func(context.Context) error, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	backend, err := cfg.OpenCache(ctx, c.noCache)
	if err != nil {
		return nil, nil, err
	}
	src, closeSrc, err := cfg.OpenSource(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return src, func(ctx context.Context) error {
		err := closeSrc(ctx)
		backend.Close()
		return err
	}, nil
}

func withEdgesFile(def graph.Definition, edgesPath string) (graph.Definition, error) {
	f, err := os.Open(edgesPath)
	if err != nil {
		return def, errors.Wrap(errors.ErrCodeNotFound, err, "edges file %s", edgesPath)
	}
	defer f.Close()
	edges, err := dfio.ReadEdges(f)
	if err != nil {
		return def, err
	}
	def.Edges = edges
	return def, nil
}

// definitionName derives a display name from a definition file path.
func definitionName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".json")
	return strings.TrimSuffix(name, ".nodes")
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
