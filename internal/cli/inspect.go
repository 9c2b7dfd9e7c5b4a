package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/pipeline"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	runOpts
	routine int // routine to print (-1 selects interactively)
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <listing>",
		Short: "Browse routines and print one routine's graph",
		Long: `Browse the routines of a listing and print the minimized graph of one.

Without --routine, an interactive picker is shown when stdout is a terminal;
otherwise a summary table of all routines is printed.

Examples:
  scriptflow inspect script.yaml                  # pick a routine interactively
  scriptflow inspect script.yaml --routine 12     # print routine 12
  scriptflow inspect script.yaml --skip-branches  # graph before structuring`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.routine, "routine", "r", -1, "routine id to print")

	return cmd
}

// runInspect runs the pipeline and prints the graph of the chosen routine.
func (c *CLI) runInspect(ctx context.Context, path string, opts inspectOpts) error {
	// A broken routine should still be listed next to the others.
	opts.keepGoing = true
	res, err := c.run(ctx, path, opts.runOpts)
	if err != nil {
		return err
	}
	if len(res.Routines) == 0 {
		printWarning("No routines in %s", path)
		return nil
	}

	id := opts.routine
	if id < 0 {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Println(routineTable(res))
			return nil
		}
		p := tea.NewProgram(NewRoutineListModel(res.Routines))
		finalModel, err := p.Run()
		if err != nil {
			return err
		}
		fm, ok := finalModel.(RoutineListModel)
		if !ok || fm.Selected == nil {
			printInfo("No selection made")
			return nil
		}
		id = fm.Selected.ID
	}

	rr, err := res.Routine(id)
	if err != nil {
		return err
	}
	printRoutine(rr)
	return nil
}

// printRoutine prints a routine's header, graph and skipped branches.
func printRoutine(rr *pipeline.RoutineResult) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Routine %d", rr.ID)) + " " + StyleDim.Render(rr.Routine.Type.String()))
	if !rr.OK() {
		printError("%s", errors.UserMessage(rr.Err))
		return
	}
	fmt.Print(renderGraph(rr.Graph))
	for _, sk := range rr.Transform.Skipped {
		printWarning("branch %d at %d left unstructured (%s)", sk.ID, sk.Vertex, sk.Reason)
	}
}

// =============================================================================
// RoutineListModel - Interactive routine selection
// =============================================================================

// RoutineListModel is the bubbletea model for interactive routine selection.
type RoutineListModel struct {
	Routines []*pipeline.RoutineResult
	Cursor   int
	Selected *pipeline.RoutineResult
	Height   int
	Offset   int
}

// NewRoutineListModel creates a new routine list model.
func NewRoutineListModel(routines []*pipeline.RoutineResult) RoutineListModel {
	return RoutineListModel{
		Routines: routines,
		Height:   15,
	}
}

func (m RoutineListModel) Init() tea.Cmd {
	return nil
}

func (m RoutineListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Routines)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Routines) == 0 {
				return m, nil
			}
			m.Selected = m.Routines[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RoutineListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Routine"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Routines) {
		end = len(m.Routines)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, routineRow(m.Routines[i])...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Routine", "Type", "Vertices", "Edges", "Structured", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Routines) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Routines[idx].OK() {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				if m.Routines[idx].OK() {
					base = base.Foreground(colorGreen)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("  [" + strconv.Itoa(m.Cursor+1) + "/" + strconv.Itoa(len(m.Routines)) + "]"))

	return b.String()
}
