package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/pkg/graph"
	dfio "github.com/matzehuels/dagflow/pkg/io"
	"github.com/matzehuels/dagflow/pkg/pipeline"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// buildFlags are shared by every command that builds a definition.
type buildFlags struct {
	workflow  string  // workflow to project onto
	edges     string  // optional edges file replacing the definition's edges
	policy    string  // cycle policy: first-seen, strict
	direction string  // layout direction: horizontal, vertical
	noChain   bool    // lay out edge-less definitions on a grid instead of chaining
	level     float64 // spacing between levels
	rank      float64 // spacing between nodes on a level
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.workflow, "workflow", "w", workflow.Wildcard, "workflow to show (common nodes belong to every workflow)")
	cmd.Flags().StringVarP(&f.edges, "edges", "e", "", "edges file replacing the definition's edges")
	cmd.Flags().StringVar(&f.policy, "policy", "", "cycle policy: first-seen (default), strict")
	cmd.Flags().StringVar(&f.direction, "direction", "", "layout direction: horizontal (default), vertical")
	cmd.Flags().BoolVar(&f.noChain, "no-chain", false, "lay out definitions without edges on a grid")
	cmd.Flags().Float64Var(&f.level, "level-spacing", 0, "distance between levels")
	cmd.Flags().Float64Var(&f.rank, "rank-spacing", 0, "distance between nodes on a level")
}

// apply overrides configured defaults with the flags that were set.
func (f *buildFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	opts.Workflow = f.workflow
	if f.policy != "" {
		opts.Policy = f.policy
	}
	if f.direction != "" {
		opts.Direction = f.direction
	}
	if cmd.Flags().Changed("no-chain") {
		opts.NoChain = f.noChain
	}
	if f.level > 0 {
		opts.LevelSpacing = f.level
	}
	if f.rank > 0 {
		opts.RankSpacing = f.rank
	}
}

// options loads the configured pipeline defaults and applies the flags.
func (c *CLI) options(cmd *cobra.Command, f *buildFlags) (pipeline.Options, error) {
	opts, err := c.pipelineOptions()
	if err != nil {
		return opts, err
	}
	f.apply(cmd, &opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// buildGraph loads a definition and builds it with the CLI options. It
// bypasses the view cache since callers need the full graph.
func (c *CLI) buildGraph(cmd *cobra.Command, arg string, f *buildFlags) (*workflow.Graph, pipeline.Options, error) {
	ctx := cmd.Context()
	opts, err := c.options(cmd, f)
	if err != nil {
		return nil, opts, err
	}
	def, err := c.loadDefinition(ctx, arg, f.edges)
	if err != nil {
		return nil, opts, err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	g, err := runner.Build(ctx, def, opts)
	return g, opts, err
}

type buildOpts struct {
	buildFlags
	output string
	levels bool
	quiet  bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <definition>",
		Short: "Build a workflow view and write it as JSON",
		Long: `Build a workflow definition into a positioned view.

The definition is a JSON file, "-" for standard input, or the name of a
definition in the configured source. The view lists every node of the
selected workflow with its level and position, and every edge between them.
Edges that close a cycle are kept and marked "feedback".`,
		Example: `  dagflow build plant.json
  dagflow build plant.nodes.json --edges plant.edges.json -w msat -o msat.json
  cat plant.json | dagflow build - --levels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.levels, "levels", false, "print nodes per level instead of JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress status output")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, arg string, opts *buildOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	pipeOpts, err := c.options(cmd, &opts.buildFlags)
	if err != nil {
		return err
	}
	def, err := c.loadDefinition(ctx, arg, opts.edges)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	view, diag, hit, err := buildView(ctx, runner, def, pipeOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s view", view.Workflow))

	if opts.levels {
		writeLevels(cmd.OutOrStdout(), view)
	} else if err := writeView(cmd, view, opts.output); err != nil {
		return err
	}

	if !opts.quiet {
		printDiagnostics(diag)
		printStats(view, hit)
	}
	return nil
}

// buildView runs the cached build and recovers diagnostics on a cache hit.
func buildView(ctx context.Context, runner *pipeline.Runner, def graph.Definition, opts pipeline.Options) (graph.View, workflow.Diagnostics, bool, error) {
	opts.Formats = []string{pipeline.FormatJSON}
	res, err := runner.Execute(ctx, def, opts)
	if err != nil {
		return graph.View{}, workflow.Diagnostics{}, false, err
	}
	return res.View, res.Diagnostics, res.CacheInfo.ViewHit, nil
}

func writeView(cmd *cobra.Command, v graph.View, path string) error {
	if path == "" {
		return dfio.WriteView(v, cmd.OutOrStdout())
	}
	if err := dfio.ExportView(v, path); err != nil {
		return err
	}
	printSuccess("Wrote %s", path)
	printFile(path)
	return nil
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
