package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/pkg/errors"
)

type validateOpts struct {
	buildFlags
	strict bool
	asJSON bool
}

type validateReport struct {
	Name        string `json:"name,omitempty"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	MaxLevel    int    `json:"maxLevel"`
	Duplicates  int    `json:"duplicatesDropped"`
	Chained     bool   `json:"chained"`
	CycleEdges  int    `json:"cycleEdges"`
	Unordered   int    `json:"unordered"`
	Valid       bool   `json:"valid"`
	Description string `json:"error,omitempty"`
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Check a definition and report what the build repairs",
		Long: `Build a definition and report its diagnostics.

Malformed input, invalid node IDs and edges that reference unknown nodes
fail validation. Duplicate edges, cycle-closing edges and nodes that could
not be ordered are repairs: they are reported, and fail validation only
with --strict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat cycles and duplicate edges as errors")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print a JSON report")

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, arg string, opts *validateOpts) error {
	g, _, err := c.buildGraph(cmd, arg, &opts.buildFlags)
	if err != nil {
		return err
	}
	d := g.Diagnostics()

	report := validateReport{
		Name:       g.Name(),
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		MaxLevel:   g.MaxLevel(),
		Duplicates: d.DuplicatesDropped,
		Chained:    d.Chained,
		CycleEdges: len(d.Excluded),
		Unordered:  len(d.Unordered),
		Valid:      true,
	}

	var failure error
	if opts.strict {
		switch {
		case d.Err() != nil:
			failure = d.Err()
		case d.HasCycles():
			failure = errors.New(errors.ErrCodeInvalidInput, "%d edge(s) close a cycle", len(d.Excluded))
		case d.DuplicatesDropped > 0:
			failure = errors.New(errors.ErrCodeInvalidInput, "%d duplicate edge(s)", d.DuplicatesDropped)
		}
	}
	if failure != nil {
		report.Valid = false
		report.Description = errors.UserMessage(failure)
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return failure
	}

	printDiagnostics(d)
	if failure != nil {
		printError("%s is invalid", displayName(report.Name, arg))
		return failure
	}
	printSuccess("%s is valid", displayName(report.Name, arg))
	printDetail("%d nodes · %d edges · %d levels", report.Nodes, report.Edges, report.MaxLevel+1)
	return nil
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
