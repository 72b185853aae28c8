package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	panelStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "browse <definition>",
		Short: "Explore levels and dependencies interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdoutIsTerminal() {
				return fmt.Errorf("browse needs an interactive terminal; use 'dagflow build --levels' instead")
			}
			g, opts, err := c.buildGraph(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			m := NewBrowseModel(g, opts.Workflow)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// BrowseModel - Level and dependency explorer
// =============================================================================

// BrowseModel is the bubbletea model for exploring a built workflow. Tab
// cycles through the catalog's workflows; the cursor selects a node whose
// blocking dependencies and dependents are shown alongside.
type BrowseModel struct {
	Graph     *workflow.Graph
	Workflows []string
	Active    int
	Current   graph.View
	Rows      []graph.ViewNode
	Cursor    int
	Offset    int
	Height    int
}

// NewBrowseModel creates a browse model starting on the given workflow.
func NewBrowseModel(g *workflow.Graph, workflowID string) BrowseModel {
	ids := g.Catalog().IDs()
	active := 0
	for i, id := range ids {
		if id == workflowID {
			active = i
		}
	}
	if ids[active] != workflowID {
		ids = append(ids, workflowID)
		active = len(ids) - 1
	}
	m := BrowseModel{Graph: g, Workflows: ids, Active: active, Height: 15}
	return m.load()
}

// load projects the graph onto the active workflow and orders rows by level.
func (m BrowseModel) load() BrowseModel {
	m.Current = m.Graph.Filter(m.Workflows[m.Active])
	m.Rows = append([]graph.ViewNode(nil), m.Current.Nodes...)
	sort.SliceStable(m.Rows, func(i, j int) bool { return m.Rows[i].Level < m.Rows[j].Level })
	m.Cursor, m.Offset = 0, 0
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.Active = (m.Active + 1) % len(m.Workflows)
			return m.load(), nil
		case "shift+tab", "left", "h":
			m.Active = (m.Active + len(m.Workflows) - 1) % len(m.Workflows)
			return m.load(), nil
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(displayName(m.Graph.Name(), "workflow")))
	b.WriteString("  ")
	b.WriteString(m.tabs())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  tab workflow  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes in this workflow"))
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.list(), "  ", m.detail()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] · %d levels", m.Cursor+1, len(m.Rows), m.Current.MaxLevel+1)))
	return b.String()
}

func (m BrowseModel) tabs() string {
	parts := make([]string, len(m.Workflows))
	for i, id := range m.Workflows {
		if i == m.Active {
			parts[i] = tabActiveStyle.Render(id)
		} else {
			parts[i] = listDimStyle.Render(id)
		}
	}
	return strings.Join(parts, " ")
}

func (m BrowseModel) list() string {
	var b strings.Builder
	end := min(m.Offset+m.Height, len(m.Rows))
	lastLevel := -1
	if m.Offset > 0 {
		lastLevel = m.Rows[m.Offset-1].Level
	}
	for i := m.Offset; i < end; i++ {
		n := m.Rows[i]
		if n.Level != lastLevel {
			b.WriteString(listDimStyle.Render(fmt.Sprintf("level %d", n.Level)))
			b.WriteString("\n")
			lastLevel = n.Level
		}
		line := "  " + n.ID
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + n.ID))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m BrowseModel) detail() string {
	n := m.Rows[m.Cursor]
	wf := m.Workflows[m.Active]

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(n.ID))
	if label, ok := n.Data["label"].(string); ok && label != "" && label != n.ID {
		b.WriteString(" " + listDimStyle.Render(label))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "level     %d\n", n.Level)
	fmt.Fprintf(&b, "position  %.0f, %.0f\n", n.Position.X, n.Position.Y)
	if n.Workflow != "" {
		fmt.Fprintf(&b, "workflow  %s\n", n.Workflow)
	}

	b.WriteString("\n" + listDimStyle.Render("blocked by") + "\n")
	writeIDs(&b, m.Graph.DependenciesFor(n.ID, wf))

	var dependents, feedback []string
	for _, e := range m.Current.Edges {
		switch {
		case e.Feedback && (e.Source == n.ID || e.Target == n.ID):
			feedback = append(feedback, e.Source+" "+iconFeedback+" "+e.Target)
		case e.Source == n.ID:
			dependents = append(dependents, e.Target)
		}
	}
	b.WriteString(listDimStyle.Render("unblocks") + "\n")
	writeIDs(&b, dependents)
	if len(feedback) > 0 {
		b.WriteString(styleFeedback.Render("cycle edges") + "\n")
		writeIDs(&b, feedback)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeIDs(b *strings.Builder, ids []string) {
	if len(ids) == 0 {
		b.WriteString(listDimStyle.Render("  none") + "\n")
		return
	}
	for _, id := range ids {
		b.WriteString("  " + id + "\n")
	}
}
