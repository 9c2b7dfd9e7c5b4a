// Package pipeline provides the control flow recovery pipeline for scriptflow.
//
// This package runs graph construction and minimization over every routine of
// a script. By centralizing this logic, the CLI commands and library callers
// share one implementation of ordering, concurrency, and failure policy.
//
// # Architecture
//
// Each routine passes through three stages, always in this order:
//
//  1. Build: construct the control flow graph and reconnect orphaned tail code
//  2. Collapse: remove label-to-label jump chains
//  3. Structure: mark if/else blocks and drop redundant jumps
//
// Routines are independent. The runner processes them on a bounded pool of
// workers; each worker owns the graph it builds.
//
// # Usage
//
// Create a Runner and process a set of routines:
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, routines, pipeline.Options{Workers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rr := range result.Routines {
//	    fmt.Println(rr.ID, rr.Graph.Len())
//	}
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/flow/build"
	"github.com/matzehuels/scriptflow/pkg/flow/transform"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Workers bounds how many routines are processed at once.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int `json:"workers,omitempty"`

	// SkipCollapse disables jump-chain collapsing.
	SkipCollapse bool `json:"skip_collapse,omitempty"`

	// SkipBranches disables branch structuring.
	SkipBranches bool `json:"skip_branches,omitempty"`

	// KeepGoing records a routine's fatal error on its result and continues
	// with the remaining routines instead of aborting the run.
	KeepGoing bool `json:"keep_going,omitempty"`

	// Runtime options (not serialized)
	Table  *script.Table `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Table == nil {
		o.Table = script.DefaultTable()
	} else if err := o.Table.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// transformOptions returns the pass selection for transform.MinimizeWithOptions.
func (o *Options) transformOptions() transform.Options {
	return transform.Options{
		SkipCollapse: o.SkipCollapse,
		SkipBranches: o.SkipBranches,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Routines holds one entry per input routine, in input order.
	Routines []*RoutineResult

	// Stats aggregates the per-routine metrics.
	Stats Stats
}

// RoutineResult is the outcome for a single routine.
type RoutineResult struct {
	ID      int
	Routine *script.Routine

	// Graph is the minimized graph; nil when Err is set.
	Graph *flow.Graph

	Build     build.Stats
	Transform transform.Result

	// Err is the fatal error that stopped this routine. Only set on results
	// returned with Options.KeepGoing.
	Err error

	Duration time.Duration
}

// OK reports whether the routine was processed without a fatal error.
func (rr *RoutineResult) OK() bool { return rr.Err == nil && rr.Graph != nil }

// Stats contains pipeline execution statistics.
type Stats struct {
	Routines        int
	Failed          int
	Vertices        int
	Edges           int
	LoopEdges       int
	TailEdges       int
	ChainsCollapsed int
	Branches        int
	Structured      int
	Unstructured    int
	JumpsRemoved    int
	Duration        time.Duration
}

// add folds one routine's metrics into s.
func (s *Stats) add(rr *RoutineResult) {
	s.Routines++
	if !rr.OK() {
		s.Failed++
		return
	}
	s.Vertices += rr.Graph.Len()
	s.Edges += rr.Graph.EdgeCount()
	s.LoopEdges += rr.Build.LoopEdges
	s.TailEdges += rr.Build.TailEdges
	s.ChainsCollapsed += rr.Transform.ChainsCollapsed
	s.Branches += rr.Transform.BranchesFound
	s.Structured += rr.Transform.BranchesStructured
	s.Unstructured += rr.Transform.Unstructured()
	s.JumpsRemoved += rr.Transform.JumpsRemoved
}

// Routine returns the result for the routine with the given id.
func (r *Result) Routine(id int) (*RoutineResult, error) {
	for _, rr := range r.Routines {
		if rr.ID == id {
			return rr, nil
		}
	}
	return nil, errors.New(errors.ErrCodeRoutineNotFound, "routine %d not in result", id)
}
