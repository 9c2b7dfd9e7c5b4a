package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/listing"
	"github.com/matzehuels/scriptflow/pkg/pipeline"
)

// structureOpts holds the command-line flags for the structure command.
type structureOpts struct {
	runOpts
	output string // output file path (stdout if empty)
}

// structureCommand creates the structure command.
func (c *CLI) structureCommand() *cobra.Command {
	var opts structureOpts

	cmd := &cobra.Command{
		Use:   "structure <listing>",
		Short: "Recover structured control flow for every routine",
		Long: `Recover structured control flow for every routine of a listing.

Each routine is turned into a control flow graph, jump chains are collapsed,
and if/else blocks are marked. The result is written as JSON.

Examples:
  scriptflow structure script.yaml                  # JSON to stdout
  scriptflow structure script.yaml -o flow.json     # JSON to file, summary to terminal
  scriptflow structure script.yaml --keep-going     # report broken routines, do not abort`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStructure(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runStructure reads the listing, runs the pipeline and writes the result.
func (c *CLI) runStructure(ctx context.Context, path string, opts structureOpts) error {
	res, err := c.run(ctx, path, opts.runOpts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		return listing.WriteJSON(os.Stdout, res)
	}
	if err := errors.ValidatePath(opts.output); err != nil {
		return err
	}
	if err := listing.ExportJSON(opts.output, res); err != nil {
		return err
	}

	printSummary(res)
	printSuccess("Recovered control flow for %d routines", res.Stats.Routines)
	printStats(res.Stats)
	printFile(opts.output)
	if res.Stats.Failed > 0 {
		printNextStep("Inspect a failing routine", fmt.Sprintf("%s inspect %s --routine <id>", appName, path))
	}
	return nil
}

// run reads a listing and runs the pipeline over all its routines.
func (c *CLI) run(ctx context.Context, path string, opts runOpts) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	routines, err := listing.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog.done("Read listing", "path", path, "routines", len(routines))

	popts, err := opts.pipelineOptions(logger)
	if err != nil {
		return nil, err
	}

	spin := newSpinner(ctx, fmt.Sprintf("Recovering control flow for %d routines...", len(routines)))
	spin.start()
	defer spin.stop()
	return c.newRunner().Run(ctx, routines, popts)
}

// printSummary reports failed and partially structured routines.
func printSummary(res *pipeline.Result) {
	for _, rr := range res.Routines {
		switch {
		case !rr.OK():
			printError("routine %d: %s", rr.ID, errors.UserMessage(rr.Err))
		case rr.Transform.Unstructured() > 0:
			printWarning("routine %d: %d of %d branches left unstructured",
				rr.ID, rr.Transform.Unstructured(), rr.Transform.BranchesFound)
		}
	}
	if res.Stats.Failed > 0 || res.Stats.Unstructured > 0 {
		fmt.Println(routineTable(res))
	}
}
