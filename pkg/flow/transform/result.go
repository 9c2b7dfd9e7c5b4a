package transform

// Result contains metrics about the passes [Minimize] applied to one graph.
//
// It is returned by [Minimize] and [MinimizeWithOptions] so callers can log
// and aggregate what happened to each routine.
type Result struct {
	// ChainsCollapsed is the number of label-jump-label chains removed by
	// [CollapseJumpChains]. Each chain removes two vertices.
	ChainsCollapsed int

	// BranchesFound is the number of conditional branches visited by
	// [StructureBranches].
	BranchesFound int

	// BranchesStructured is the number of branches that received IfStart and
	// IfEnd markers.
	BranchesStructured int

	// JumpsRemoved is the number of redundant unconditional jumps deleted
	// while structuring branches.
	JumpsRemoved int

	// BranchesUnconverged counts branches whose arms never meet.
	BranchesUnconverged int

	// BranchesNonLabelMerge counts branches whose arms meet at an operation
	// that is not a label.
	BranchesNonLabelMerge int

	// Skipped lists the branches left unstructured, in routine order.
	Skipped []Skipped
}

// Unstructured returns the number of branches left without markers.
func (r Result) Unstructured() int {
	return r.BranchesUnconverged + r.BranchesNonLabelMerge
}

// Options configures which passes [MinimizeWithOptions] applies.
//
// The zero value applies every pass (equivalent to calling [Minimize]).
type Options struct {
	// SkipCollapse disables jump-chain collapsing. Branch structuring still
	// runs, but may find fewer redundant jumps.
	SkipCollapse bool

	// SkipBranches disables branch structuring. No markers are attached.
	SkipBranches bool
}
