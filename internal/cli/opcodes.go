package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// opcodesCommand creates the opcodes command.
func (c *CLI) opcodesCommand() *cobra.Command {
	var (
		path   string
		asTOML bool
	)

	cmd := &cobra.Command{
		Use:   "opcodes",
		Short: "Print the opcode classification table in effect",
		Long: `Print which opcodes end flow, branch, or jump.

The table is read from --opcodes, then from opcodes.toml in the config
directory, and otherwise the built-in table is used. Use --toml to print a
starting point for a custom table.

Examples:
  scriptflow opcodes
  scriptflow opcodes --toml > ~/.config/scriptflow/opcodes.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(path, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			if asTOML {
				data, err := tbl.TOML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if dir, err := configDir(); err == nil && path == "" {
				printInfo("Custom tables are read from %s", dir)
			}
			fmt.Print(renderTable(tbl))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "opcodes", "", "opcode table (TOML)")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the table as TOML")

	return cmd
}
