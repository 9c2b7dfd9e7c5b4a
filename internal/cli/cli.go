// Package cli implements the scriptflow command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scriptflow/pkg/buildinfo"
	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/pipeline"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scriptflow"

	// tableFile is the opcode table looked up in the config directory when
	// --opcodes is not given.
	tableFile = "opcodes.toml"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Scriptflow recovers structured control flow from script bytecode",
		Long:         `Scriptflow builds a control flow graph for every routine of a disassembled script, collapses jump chains, and marks if/else blocks so the routines can be emitted as structured code.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.structureCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.opcodesCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Shared Flags
// =============================================================================

// runOpts holds the flags shared by every command that runs the pipeline.
type runOpts struct {
	opcodes      string // opcode table path (built-in table if empty)
	workers      int    // concurrent routines (GOMAXPROCS if zero)
	keepGoing    bool   // continue past failing routines
	skipCollapse bool   // disable jump-chain collapsing
	skipBranches bool   // disable branch structuring
}

func (o *runOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.opcodes, "opcodes", "", "opcode table (TOML); defaults to "+tableFile+" in the config directory, then the built-in table")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "routines processed concurrently (0 = number of CPUs)")
	cmd.Flags().BoolVar(&o.keepGoing, "keep-going", false, "report failing routines instead of aborting")
	cmd.Flags().BoolVar(&o.skipCollapse, "skip-collapse", false, "do not collapse jump chains")
	cmd.Flags().BoolVar(&o.skipBranches, "skip-branches", false, "do not structure branches")
}

// pipelineOptions converts runOpts into pipeline.Options.
func (o *runOpts) pipelineOptions(logger *log.Logger) (pipeline.Options, error) {
	tbl, err := loadTable(o.opcodes, logger)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Workers:      o.workers,
		KeepGoing:    o.keepGoing,
		SkipCollapse: o.skipCollapse,
		SkipBranches: o.skipBranches,
		Table:        tbl,
		Logger:       logger,
	}, nil
}

// loadTable reads the opcode table from path, from the config directory when
// path is empty, or falls back to the built-in table.
func loadTable(path string, logger *log.Logger) (*script.Table, error) {
	if path != "" {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		return script.LoadTable(path)
	}
	dir, err := configDir()
	if err != nil {
		return script.DefaultTable(), nil
	}
	tbl, err := script.LoadTable(filepath.Join(dir, tableFile))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return script.DefaultTable(), nil
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("using opcode table", "path", filepath.Join(dir, tableFile))
	return tbl, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/scriptflow/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
