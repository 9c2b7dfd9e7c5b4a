// Package transform rewrites a routine's control flow graph into a form
// that a structured emitter can walk.
//
// # Overview
//
// A graph fresh from [github.com/matzehuels/scriptflow/pkg/flow/build]
// mirrors the bytecode one instruction per vertex, including the plumbing
// the compiler emitted to lay out blocks linearly. The passes here remove
// that plumbing and annotate where blocks begin and end.
//
// [Minimize] applies both passes in the correct order.
//
// # Jump Chains
//
// [CollapseJumpChains] removes a label whose only content is an
// unconditional jump to another label:
//
//	Before: p -> @label_1 -> Jump -> @label_2 -> ...
//	After:  p -> @label_2 -> ...
//
// # Branch Structuring
//
// [StructureBranches] finds, for every conditional branch, the label where
// its two arms meet again. The branch is marked IfStart(n), the label
// IfEnd(n), and the edge taken when the condition falls through is flagged
// IsElse. An unconditional jump sitting directly before the merge label on
// either arm only skipped over the other arm, so it is deleted.
//
//	Before:           After:
//	  Branch -> @L      Branch -> @L (IfStart(0))
//	  A                 A
//	  Jump -> @E        @L
//	  @L                B
//	  B                 @E (IfEnd(0))
//	  @E
//
// Branches that never reconverge, or reconverge somewhere other than a
// label, are skipped and reported in [Result.Skipped].
//
// # Mutation
//
// All passes mutate the graph in place. Vertex handles stay valid for
// surviving vertices; deletions are applied in one batch at the end of each
// pass.
package transform
