package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dagflow/pkg/graph"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleFeedback = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconFeedback = "↺"
	iconCached   = "cached"
	iconFresh    = "fresh"
)

// uiOut receives status output. Data written by commands (views, dependency
// lists, rendered DOT) goes to the command's stdout instead, so status lines
// never corrupt piped output.
var uiOut io.Writer = os.Stderr

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(uiOut, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(uiOut, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(uiOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(uiOut, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Graph Output
// =============================================================================

// printStats prints view statistics on a single line.
func printStats(v graph.View, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", len(v.Nodes)),
		fmt.Sprintf("%d edges", len(v.Edges)),
		fmt.Sprintf("%d levels", v.MaxLevel+1),
	}
	if n := feedbackCount(v); n > 0 {
		parts = append(parts, fmt.Sprintf("%d feedback", n))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(uiOut, line)
}

// printDiagnostics reports the repairs a build made. Nothing is printed
// for a clean definition.
func printDiagnostics(d workflow.Diagnostics) {
	if d.Chained {
		printInfo("No edges given; nodes were chained in input order")
	}
	if d.DuplicatesDropped > 0 {
		printInfo("Dropped %d duplicate edge(s)", d.DuplicatesDropped)
	}
	if len(d.Excluded) > 0 {
		printWarning("%d edge(s) close a cycle and do not block", len(d.Excluded))
		for _, p := range d.Excluded {
			printDetail("%s %s %s", p.From, iconFeedback, p.To)
		}
	}
	if err := d.Err(); err != nil {
		printWarning("%v", err)
		printDetail("these nodes were placed on level 0")
	}
}

// writeLevels writes one line per level listing its node IDs.
func writeLevels(w io.Writer, v graph.View) {
	levels := v.Levels()
	for lvl := 0; lvl <= v.MaxLevel; lvl++ {
		ids := levels[lvl]
		if len(ids) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", StyleHighlight.Render(fmt.Sprintf("L%-3d", lvl)), strings.Join(ids, "  "))
	}
}

func feedbackCount(v graph.View) int {
	n := 0
	for _, e := range v.Edges {
		if e.Feedback {
			n++
		}
	}
	return n
}
