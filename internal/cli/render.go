package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	buildFlags
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: dot, svg, png, pdf, json
	detailed bool     // show level, workflow and data in node labels
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Render a workflow view to SVG, PNG, PDF or DOT",
		Long: `Render a workflow view as a node-link diagram.

Levels become Graphviz ranks so the drawing follows the computed layering.
Edges that close a cycle are drawn dashed. SVG and DOT are produced in
process; PNG and PDF need rsvg-convert on the PATH.`,
		Example: `  dagflow render plant.json -w msat
  dagflow render plant.json -f svg,png -o out/plant
  dagflow render plant.json -f dot -o - | dot -Tsvg > plant.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format) or base path (multiple); "-" writes to stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show level, workflow and data in node labels")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, arg string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	pipeOpts, err := c.options(cmd, &opts.buildFlags)
	if err != nil {
		return err
	}
	pipeOpts.Formats = opts.formats
	pipeOpts.Detail = opts.detailed

	def, err := c.loadDefinition(ctx, arg, opts.edges)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	var result *pipeline.Result
	err = c.withSpinner(ctx, "Rendering "+pipeOpts.Workflow+"...", func() error {
		var err error
		result, err = runner.Execute(ctx, def, pipeOpts)
		return err
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	if opts.output == stdinArg {
		if len(opts.formats) != 1 {
			return fmt.Errorf("writing to stdout needs exactly one format")
		}
		_, err := cmd.OutOrStdout().Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := opts.output
	if base == "" {
		base = defaultBase(def.Name, arg, pipeOpts.Workflow)
	}
	paths := outputPaths(base, opts.formats)

	printDiagnostics(result.Diagnostics)
	printSuccess("Rendered %s", pipeOpts.Workflow)
	for _, format := range opts.formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.View, result.CacheInfo.ViewHit)
	return nil
}

// defaultBase names outputs after the definition and workflow.
func defaultBase(name, arg, workflowID string) string {
	if name == "" {
		if arg == stdinArg {
			name = appName
		} else {
			name = definitionName(arg)
		}
	}
	return name + "-" + workflowID
}

// outputPaths maps each format to a file path. A single format whose path
// already ends in a format extension keeps the path as given; otherwise the
// format is appended as the extension.
func outputPaths(base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	ext := filepath.Ext(base)
	known := ext != "" && pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil
	if len(formats) == 1 && known {
		paths[formats[0]] = base
		return paths
	}
	if known {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
