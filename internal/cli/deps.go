package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/pkg/workflow"
)

type depsOpts struct {
	buildFlags
	all    bool
	asJSON bool
}

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var opts depsOpts

	cmd := &cobra.Command{
		Use:   "deps <definition> [node]",
		Short: "Print the blocking dependencies of a node",
		Long: `Print the nodes that must finish before a node can run.

Only blocking dependencies are listed: an edge that closes a cycle is shown
in views but never blocks. Dependencies outside the selected workflow are
omitted, and an unknown node simply has none.

With --all, every node of the workflow is listed with its dependencies.`,
		Example: `  dagflow deps plant.json MSAT2 -w msat
  dagflow deps plant --all --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !opts.all {
				return fmt.Errorf("a node ID is required unless --all is set")
			}
			g, pipeOpts, err := c.buildGraph(cmd, args[0], &opts.buildFlags)
			if err != nil {
				return err
			}
			if opts.all {
				return writeAllDeps(cmd, g, pipeOpts.Workflow, opts.asJSON)
			}
			return writeNodeDeps(cmd, g, args[1], pipeOpts.Workflow, opts.asJSON)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "list dependencies for every node in the workflow")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")

	return cmd
}

func writeNodeDeps(cmd *cobra.Command, g *workflow.Graph, nodeID, workflowID string, asJSON bool) error {
	deps := g.DependenciesFor(nodeID, workflowID)
	out := cmd.OutOrStdout()
	if asJSON {
		return json.NewEncoder(out).Encode(deps)
	}
	if _, ok := g.Node(nodeID); !ok {
		printWarning("Unknown node %s", nodeID)
	}
	for _, d := range deps {
		fmt.Fprintln(out, d)
	}
	return nil
}

func writeAllDeps(cmd *cobra.Command, g *workflow.Graph, workflowID string, asJSON bool) error {
	members := g.Members(workflowID)
	out := cmd.OutOrStdout()

	if asJSON {
		all := make(map[string][]string, len(members))
		for _, id := range members {
			all[id] = g.DependenciesFor(id, workflowID)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	rows := make([][]string, 0, len(members))
	for _, id := range members {
		lvl, _ := g.Level(id)
		rows = append(rows, []string{id, fmt.Sprint(lvl), strings.Join(g.DependenciesFor(id, workflowID), ", ")})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Level", "Blocked by").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	fmt.Fprintln(out, t.Render())
	return nil
}
