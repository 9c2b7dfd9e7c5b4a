package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/pipeline"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
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

	styleMarker = lipgloss.NewStyle().Foreground(colorCyan)
	styleLoop   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printStats prints run statistics on a single line.
func printStats(s pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d routines", s.Routines),
		fmt.Sprintf("%d vertices", s.Vertices),
		fmt.Sprintf("%d edges", s.Edges),
		fmt.Sprintf("%d/%d branches structured", s.Structured, s.Branches),
	}
	if s.ChainsCollapsed > 0 {
		parts = append(parts, fmt.Sprintf("%d chains collapsed", s.ChainsCollapsed))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + StyleValue.Render(cmd))
}

// =============================================================================
// Routine Rendering
// =============================================================================

// routineRow returns the summary columns for one routine.
func routineRow(rr *pipeline.RoutineResult) []string {
	typ := ""
	if rr.Routine != nil {
		typ = rr.Routine.Type.String()
	}
	if !rr.OK() {
		msg := "failed"
		if rr.Err != nil {
			msg = rr.Err.Error()
		}
		return []string{strconv.Itoa(rr.ID), typ, "—", "—", "—", msg}
	}
	t := rr.Transform
	return []string{
		strconv.Itoa(rr.ID),
		typ,
		strconv.Itoa(rr.Graph.Len()),
		strconv.Itoa(rr.Graph.EdgeCount()),
		fmt.Sprintf("%d/%d", t.BranchesStructured, t.BranchesFound),
		rr.Duration.Round(time.Microsecond).String(),
	}
}

// routineTable renders the per-routine summary of a run.
func routineTable(res *pipeline.Result) string {
	rows := make([][]string, len(res.Routines))
	for i, rr := range res.Routines {
		rows[i] = routineRow(rr)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Routine", "Type", "Vertices", "Edges", "Structured", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < len(res.Routines) && !res.Routines[row].OK() {
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// renderGraph lists a routine's vertices in order, each followed by its
// out-edges.
func renderGraph(g *flow.Graph) string {
	var b strings.Builder
	for _, v := range g.Vertices() {
		text := fmt.Sprint(v.Op)
		if len(v.Op.Markers()) > 0 {
			text = styleMarker.Render(text)
		}
		fmt.Fprintf(&b, "%4d  %s\n", v.ID, text)
		for _, e := range g.Out(v.ID) {
			b.WriteString(StyleDim.Render(fmt.Sprintf("        %s %d  level=%d", iconArrow, e.To, e.FlowLevel)))
			if e.IsElse {
				b.WriteString(StyleDim.Render(" else"))
			}
			if e.Loop {
				b.WriteString(" " + styleLoop.Render("loop"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderTable lists the opcode classification table.
func renderTable(t *script.Table) string {
	var b strings.Builder
	row := func(name string, ops []string) {
		key := lipgloss.NewStyle().Foreground(colorGray).Width(10).Render(name)
		fmt.Fprintf(&b, "%s %s\n", key, StyleValue.Render(strings.Join(ops, ", ")))
	}
	row("hold", []string{t.Hold})
	row("terminal", t.Terminal)
	row("branch", t.Branch)
	row("jump", t.Jump)
	return b.String()
}
