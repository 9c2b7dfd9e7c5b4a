package pipeline

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/observability"
	"github.com/matzehuels/scriptflow/pkg/script"
)

func op(name string) *script.Op { return &script.Op{Code: script.Opcode{Name: name}} }

func label(id int) *script.Label { return &script.Label{ID: id} }

func jump(name string, lbl int) *script.LabelJump {
	return &script.LabelJump{Root: op(name), Target: script.LabelRef{Label: lbl}}
}

// ifElse returns a routine with one if/else block that structures cleanly.
func ifElse(id int) *script.Routine {
	ops := []script.Operation{
		jump("BranchValue", 3),
		op("Message"),
		jump("Jump", 6),
		label(3),
		op("Message"),
		jump("Jump", 6),
		label(6),
		op("Return"),
	}
	for _, o := range ops {
		if lj, ok := o.(*script.LabelJump); ok {
			lj.Target.Routine = id
		}
	}
	return &script.Routine{ID: id, Type: script.RoutineGeneric, Ops: ops}
}

// broken returns a routine that jumps to a label it does not define.
func broken(id int) *script.Routine {
	return &script.Routine{ID: id, Ops: []script.Operation{
		op("Message"),
		&script.LabelJump{Root: op("Jump"), Target: script.LabelRef{Routine: id, Label: 99}},
	}}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers = %d, want %d", opts.Workers, runtime.GOMAXPROCS(0))
	}
	if opts.Table == nil {
		t.Error("Table should default to DefaultTable()")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative workers", Options{Workers: -1}, errors.ErrCodeInvalidInput},
		{"empty jump set", Options{Table: &script.Table{Hold: "Hold"}}, errors.ErrCodeInvalidOpcodeTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestRun(t *testing.T) {
	res, err := NewRunner(nil).Run(context.Background(), []*script.Routine{ifElse(0)}, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Routines) != 1 {
		t.Fatalf("len(Routines) = %d, want 1", len(res.Routines))
	}
	rr := res.Routines[0]
	if !rr.OK() {
		t.Fatalf("routine failed: %v", rr.Err)
	}
	if rr.Graph.Len() != 6 {
		t.Errorf("Graph.Len() = %d, want 6", rr.Graph.Len())
	}
	if res.Stats.Structured != 1 || res.Stats.JumpsRemoved != 2 || res.Stats.Unstructured != 0 {
		t.Errorf("Stats = %+v, want 1 structured, 2 jumps removed, 0 unstructured", res.Stats)
	}
}

func TestRunTwiceOnSameRoutine(t *testing.T) {
	rt := ifElse(0)
	runner := NewRunner(nil)
	for i := 0; i < 2; i++ {
		if _, err := runner.Run(context.Background(), []*script.Routine{rt}, Options{}); err != nil {
			t.Fatalf("run %d: Run() error = %v", i, err)
		}
	}

	if diff := cmp.Diff([]script.Marker{script.IfStart{ID: 0}}, rt.Ops[0].Markers()); diff != "" {
		t.Errorf("branch markers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]script.Marker{script.IfEnd{ID: 0}}, rt.Ops[6].Markers()); diff != "" {
		t.Errorf("end markers (-want +got):\n%s", diff)
	}
}

func TestNewRunnerNilLoggerIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	runner := NewRunner(nil)
	if runner.Logger != nil {
		t.Fatalf("Logger = %v, want nil", runner.Logger)
	}
	if _, err := runner.Run(context.Background(), []*script.Routine{ifElse(0), broken(1)}, Options{KeepGoing: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("default logger got output %q, want none", buf.String())
	}

	var own bytes.Buffer
	logged := NewRunner(log.New(&own))
	if _, err := logged.Run(context.Background(), []*script.Routine{ifElse(0)}, Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if own.Len() == 0 {
		t.Error("runner logger got no output")
	}
}

func TestRunPreservesOrder(t *testing.T) {
	var routines []*script.Routine
	for i := 0; i < 32; i++ {
		routines = append(routines, ifElse(i))
	}

	res, err := NewRunner(nil).Run(context.Background(), routines, Options{Workers: 4})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, rr := range res.Routines {
		if rr.ID != i {
			t.Errorf("Routines[%d].ID = %d, want %d", i, rr.ID, i)
		}
	}
	if res.Stats.Routines != 32 || res.Stats.Structured != 32 {
		t.Errorf("Stats = %+v, want 32 routines, 32 structured", res.Stats)
	}
}

func TestRunSkipBranches(t *testing.T) {
	res, err := NewRunner(nil).Run(context.Background(), []*script.Routine{ifElse(0)}, Options{SkipBranches: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Branches != 0 || res.Routines[0].Graph.Len() != 8 {
		t.Errorf("SkipBranches: %d branches, %d vertices, want 0, 8", res.Stats.Branches, res.Routines[0].Graph.Len())
	}
}

func TestRunFatalErrorAborts(t *testing.T) {
	routines := []*script.Routine{ifElse(0), broken(1), ifElse(2)}
	_, err := NewRunner(nil).Run(context.Background(), routines, Options{Workers: 1})
	if !errors.Is(err, errors.ErrCodeUnknownLabel) {
		t.Errorf("Run() error = %v, want code %v", err, errors.ErrCodeUnknownLabel)
	}
	if !errors.Fatal(err) {
		t.Errorf("Fatal(%v) = false, want true", err)
	}
}

func TestRunKeepGoing(t *testing.T) {
	routines := []*script.Routine{ifElse(0), broken(1), ifElse(2)}
	res, err := NewRunner(nil).Run(context.Background(), routines, Options{KeepGoing: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Failed != 1 || res.Stats.Routines != 3 {
		t.Errorf("Stats = %+v, want 3 routines, 1 failed", res.Stats)
	}
	rr, err := res.Routine(1)
	if err != nil {
		t.Fatalf("Routine(1) error = %v", err)
	}
	if rr.OK() || !errors.Is(rr.Err, errors.ErrCodeUnknownLabel) {
		t.Errorf("Routine(1).Err = %v, want code %v", rr.Err, errors.ErrCodeUnknownLabel)
	}
	if rr.Graph != nil {
		t.Error("failed routine should have no graph")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil).Run(ctx, []*script.Routine{ifElse(0)}, Options{})
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
}

func TestResultRoutineNotFound(t *testing.T) {
	res := &Result{}
	if _, err := res.Routine(7); !errors.Is(err, errors.ErrCodeRoutineNotFound) {
		t.Errorf("Routine(7) error = %v, want code %v", err, errors.ErrCodeRoutineNotFound)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks

	mu           sync.Mutex
	started      int
	completed    int
	unstructured int
	runs         int
}

func (h *countingHooks) OnRoutineStart(context.Context, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *countingHooks) OnRoutineComplete(context.Context, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
}

func (h *countingHooks) OnBranchUnstructured(context.Context, int, int, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unstructured++
}

func (h *countingHooks) OnRunComplete(context.Context, int, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
}

func TestRunHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	looping := &script.Routine{ID: 9, Ops: []script.Operation{
		&script.LabelJump{Root: op("BranchValue"), Target: script.LabelRef{Routine: 9, Label: 4}},
		label(1),
		op("Message"),
		&script.LabelJump{Root: op("Jump"), Target: script.LabelRef{Routine: 9, Label: 1}},
		label(4),
		op("Message"),
		&script.LabelJump{Root: op("Jump"), Target: script.LabelRef{Routine: 9, Label: 4}},
	}}

	res, err := NewRunner(nil).Run(context.Background(), []*script.Routine{ifElse(0), looping}, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Unstructured != 1 {
		t.Errorf("Stats.Unstructured = %d, want 1", res.Stats.Unstructured)
	}
	if hooks.started != 2 || hooks.completed != 2 || hooks.unstructured != 1 || hooks.runs != 1 {
		t.Errorf("hooks: started=%d completed=%d unstructured=%d runs=%d, want 2 2 1 1",
			hooks.started, hooks.completed, hooks.unstructured, hooks.runs)
	}
}
