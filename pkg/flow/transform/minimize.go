package transform

import (
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// Minimize applies every pass to a freshly built graph, in place.
func Minimize(g *flow.Graph, t *script.Table) (Result, error) {
	return MinimizeWithOptions(g, t, Options{})
}

// MinimizeWithOptions applies the passes selected by opts, in place. Jump
// chains are collapsed before branches are structured.
//
// On error the graph may have been partially rewritten and should be
// discarded.
func MinimizeWithOptions(g *flow.Graph, t *script.Table, opts Options) (Result, error) {
	var res Result
	if !opts.SkipCollapse {
		res.ChainsCollapsed = CollapseJumpChains(g, t)
	}
	if opts.SkipBranches {
		return res, nil
	}
	stats, err := StructureBranches(g, t)
	res.BranchesFound = stats.Found
	res.BranchesStructured = stats.Structured
	res.JumpsRemoved = stats.JumpsRemoved
	res.BranchesUnconverged = stats.Count(SkipNoConvergence)
	res.BranchesNonLabelMerge = stats.Count(SkipNonLabelMerge)
	res.Skipped = stats.Skipped
	return res, err
}
