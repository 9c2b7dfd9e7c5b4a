// Package build turns a routine into its control flow graph.
//
// [Build] expands successors with the rules in [Successors] and then runs
// [ReconnectTail]. The result is the input to the rewriting passes in
// package transform.
package build
