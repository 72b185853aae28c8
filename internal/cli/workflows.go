package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// workflowsCommand lists the configured workflow catalog.
func (c *CLI) workflowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List the configured workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			cat := cfg.Catalog.WithDefaults()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s\t%s\n", StyleHighlight.Render(cat.Wildcard), StyleDim.Render("every node"))
			for _, w := range cat.Workflows {
				desc := w.Description
				if w.Prefix != "" {
					desc = strings.TrimSpace(fmt.Sprintf("%s (%s*)", desc, w.Prefix))
				}
				fmt.Fprintf(out, "%s\t%s\n", StyleHighlight.Render(w.ID), desc)
			}

			common := append(append([]string{}, cat.CommonIDs...), prefixed(cat.CommonPrefixes)...)
			if len(common) > 0 {
				printDetail("common to every workflow: %s", strings.Join(common, ", "))
			}
			return nil
		},
	}
}

func prefixed(prefixes []string) []string {
	out := make([]string, len(prefixes))
	for i, p := range prefixes {
		out[i] = p + "*"
	}
	return out
}
