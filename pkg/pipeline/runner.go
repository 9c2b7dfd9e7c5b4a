package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/scriptflow/pkg/flow/build"
	"github.com/matzehuels/scriptflow/pkg/flow/transform"
	"github.com/matzehuels/scriptflow/pkg/observability"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// Runner encapsulates pipeline execution.
// Both the structure and inspect commands use it so routines are processed
// the same way everywhere.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with different
// options, as long as they pass different routines: a run writes branch
// markers onto the routines' operations.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger stays nil, so runs log nothing
// unless Options.Logger is set.
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{Logger: logger}
}

// Run builds and minimizes the graph of every routine.
//
// The graphs share the routines' operations, so the IfStart and IfEnd
// markers a run places are visible on rt.Ops afterwards. Running the same
// routines again replaces those markers instead of adding to them.
//
// Results are returned in input order regardless of completion order. A
// fatal routine error cancels the remaining work and is returned, unless
// opts.KeepGoing is set, in which case it is recorded on the routine's
// result and the run continues.
func (r *Runner) Run(ctx context.Context, routines []*script.Routine, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, len(routines), opts.Workers)

	result := &Result{Routines: make([]*RoutineResult, len(routines))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, rt := range routines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rr := r.Routine(gctx, rt, opts)
			result.Routines[i] = rr
			if rr.Err != nil && !opts.KeepGoing {
				return rr.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rr := range result.Routines {
		result.Stats.add(rr)
	}
	result.Stats.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, result.Stats.Routines, result.Stats.Failed, result.Stats.Duration)

	opts.Logger.Info("recovered control flow",
		"routines", result.Stats.Routines,
		"failed", result.Stats.Failed,
		"structured", result.Stats.Structured,
		"unstructured", result.Stats.Unstructured,
		"duration", result.Stats.Duration)

	return result, nil
}

// Routine runs the stages for a single routine. Errors are reported on the
// returned result rather than returned.
func (r *Runner) Routine(ctx context.Context, rt *script.Routine, opts Options) *RoutineResult {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return &RoutineResult{ID: rt.ID, Routine: rt, Err: fmt.Errorf("invalid options: %w", err)}
	}

	hooks := observability.Pipeline()
	hooks.OnRoutineStart(ctx, rt.ID, len(rt.Ops))

	start := time.Now()
	rr := &RoutineResult{ID: rt.ID, Routine: rt}
	defer func() {
		rr.Duration = time.Since(start)
		vertices := 0
		if rr.Graph != nil {
			vertices = rr.Graph.Len()
		}
		hooks.OnRoutineComplete(ctx, rt.ID, vertices, rr.Duration, rr.Err)
	}()

	// Stage 1: Build
	g, stats, err := build.Build(rt, opts.Table)
	if err != nil {
		rr.Err = fmt.Errorf("routine %d: build: %w", rt.ID, err)
		opts.Logger.Error("build failed", "routine", rt.ID, "err", err)
		return rr
	}
	rr.Build = stats

	// Stages 2 and 3: Collapse and Structure
	res, err := transform.MinimizeWithOptions(g, opts.Table, opts.transformOptions())
	if err != nil {
		rr.Err = fmt.Errorf("routine %d: minimize: %w", rt.ID, err)
		opts.Logger.Error("minimize failed", "routine", rt.ID, "err", err)
		return rr
	}
	rr.Graph = g
	rr.Transform = res

	for _, sk := range res.Skipped {
		hooks.OnBranchUnstructured(ctx, rt.ID, int(sk.Vertex), string(sk.Reason))
		opts.Logger.Debug("branch left unstructured",
			"routine", rt.ID,
			"vertex", sk.Vertex,
			"branch", sk.ID,
			"reason", sk.Reason)
	}

	opts.Logger.Debug("processed routine",
		"routine", rt.ID,
		"vertices", g.Len(),
		"edges", g.EdgeCount(),
		"collapsed", res.ChainsCollapsed,
		"structured", res.BranchesStructured,
		"unstructured", res.Unstructured(),
		"duration", time.Since(start))

	return rr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
