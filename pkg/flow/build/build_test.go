package build

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

func op(name string) *script.Op { return &script.Op{Code: script.Opcode{Name: name}} }

func label(id int) *script.Label { return &script.Label{ID: id} }

func jump(name string, lbl int) *script.LabelJump {
	return &script.LabelJump{Root: op(name), Target: script.LabelRef{Label: lbl}}
}

func routine(ops ...script.Operation) *script.Routine { return &script.Routine{Ops: ops} }

type edge struct {
	From, To int
	Level    int
	Loop     bool
}

func edges(g *flow.Graph) []edge {
	var out []edge
	for _, e := range g.Edges() {
		out = append(out, edge{int(e.From), int(e.To), e.FlowLevel, e.Loop})
	}
	return out
}

func mustBuild(t *testing.T, r *script.Routine) (*flow.Graph, Stats) {
	t.Helper()
	g, stats, err := Build(r, script.DefaultTable())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g, stats
}

func TestBuildEmpty(t *testing.T) {
	g, stats := mustBuild(t, routine())
	if g.Len() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty routine: %d vertices, %d edges, want 0, 0", g.Len(), g.EdgeCount())
	}
	if stats.Vertices != 0 {
		t.Errorf("Stats.Vertices = %d, want 0", stats.Vertices)
	}
}

func TestBuildSingle(t *testing.T) {
	g, _ := mustBuild(t, routine(op("Return")))
	if g.Len() != 1 || g.EdgeCount() != 0 {
		t.Errorf("single op: %d vertices, %d edges, want 1, 0", g.Len(), g.EdgeCount())
	}
}

func TestBuildFallthroughOnly(t *testing.T) {
	g, _ := mustBuild(t, routine(op("Message"), op("Return")))

	want := []edge{{0, 1, 0, false}}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if g.OutDegree(1) != 0 {
		t.Errorf("OutDegree(1) = %d, want 0", g.OutDegree(1))
	}
}

func TestBuildHoldException(t *testing.T) {
	g, _ := mustBuild(t, routine(op("Hold"), op("Return")))

	want := []edge{{0, 1, 0, false}}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildHoldBeforeNonTerminal(t *testing.T) {
	g, stats := mustBuild(t, routine(op("Hold"), op("Message")))
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if stats.Unreached != 1 {
		t.Errorf("Stats.Unreached = %d, want 1", stats.Unreached)
	}
}

func TestBuildHoldNotTerminal(t *testing.T) {
	// With a table where hold is not terminal, the plain fallthrough is the
	// only edge; the hold rule must not duplicate it.
	tbl := &script.Table{Hold: "Hold", Terminal: []string{"Return", "Jump"}, Jump: []string{"Jump"}}
	g, _, err := Build(routine(op("Hold"), op("Return")), tbl)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestBuildFlowLevels(t *testing.T) {
	g, _ := mustBuild(t, routine(
		jump("BranchValue", 1), // 0
		op("Message"),          // 1
		op("Return"),           // 2
		label(1),               // 3
		op("Message"),          // 4
		op("Return"),           // 5
	))

	want := []edge{
		{0, 1, 0, false},
		{0, 3, 1, false},
		{1, 2, 0, false},
		{3, 4, 1, false},
		{4, 5, 1, false},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildParallelEdges(t *testing.T) {
	g, _ := mustBuild(t, routine(jump("BranchValue", 1), label(1), op("Return")))

	want := []edge{
		{0, 1, 0, false},
		{0, 1, 1, false},
		{1, 2, 0, false},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLoopEdge(t *testing.T) {
	g, stats := mustBuild(t, routine(
		label(1),               // 0
		op("Message"),          // 1
		jump("BranchValue", 1), // 2
		op("Return"),           // 3
	))

	want := []edge{
		{0, 1, 0, false},
		{1, 2, 0, false},
		{2, 3, 0, false},
		{2, 0, 1, true},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if stats.LoopEdges != 1 {
		t.Errorf("Stats.LoopEdges = %d, want 1", stats.LoopEdges)
	}
}

func TestBuildSelfLoop(t *testing.T) {
	g, _ := mustBuild(t, routine(op("Message"), label(1), jump("Jump", 1)))

	want := []edge{
		{0, 1, 0, false},
		{1, 2, 0, false},
		{2, 1, 1, true},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildForwardJumpIsNotLoop(t *testing.T) {
	g, stats := mustBuild(t, routine(
		jump("Jump", 1), // 0
		op("Message"),   // 1 dead
		label(1),        // 2
		op("Return"),    // 3
	))
	if stats.LoopEdges != 0 {
		t.Errorf("Stats.LoopEdges = %d, want 0", stats.LoopEdges)
	}
	if g.InDegree(1) != 0 {
		t.Errorf("InDegree(1) = %d, want 0", g.InDegree(1))
	}
}

func TestBuildUnknownLabel(t *testing.T) {
	_, _, err := Build(routine(op("Message"), jump("Jump", 9)), script.DefaultTable())
	if !errors.Is(err, errors.ErrCodeUnknownLabel) {
		t.Errorf("Build() error = %v, want code %v", err, errors.ErrCodeUnknownLabel)
	}
}

func TestBuildDuplicateLabel(t *testing.T) {
	_, _, err := Build(routine(label(1), label(1)), script.DefaultTable())
	if !errors.Is(err, errors.ErrCodeDuplicateLabel) {
		t.Errorf("Build() error = %v, want code %v", err, errors.ErrCodeDuplicateLabel)
	}
}

func TestBuildCrossRoutineJump(t *testing.T) {
	r := routine(
		op("Message"),
		&script.LabelJump{Root: op("Jump"), Target: script.LabelRef{Routine: 3, Label: 9}},
	)
	g, _ := mustBuild(t, r)

	want := []edge{{0, 1, 0, false}}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTailReconnect(t *testing.T) {
	g, stats := mustBuild(t, routine(
		op("Message"), // 0
		op("Return"),  // 1
		op("Message"), // 2 orphan
		op("Message"), // 3 orphan
	))

	want := []edge{
		{0, 1, 0, false},
		{1, 2, 0, false},
		{2, 3, 0, false},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if stats.TailEdges != 2 {
		t.Errorf("Stats.TailEdges = %d, want 2", stats.TailEdges)
	}
	if stats.Unreached != 0 {
		t.Errorf("Stats.Unreached = %d, want 0", stats.Unreached)
	}
}

func TestBuildTailReconnectLabelJump(t *testing.T) {
	g, stats := mustBuild(t, routine(
		op("Message"),          // 0
		label(1),               // 1
		op("Return"),           // 2
		op("Message"),          // 3 orphan
		jump("BranchValue", 1), // 4 orphan, jumps back into established flow
	))

	want := []edge{
		{0, 1, 0, false},
		{1, 2, 0, false},
		{2, 3, 0, false},
		{3, 4, 0, false},
		{4, 1, 1, true},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if stats.TailEdges != 3 {
		t.Errorf("Stats.TailEdges = %d, want 3", stats.TailEdges)
	}
}

func TestBuildTailReconnectSkipsJump(t *testing.T) {
	g, _ := mustBuild(t, routine(
		label(1),        // 0
		op("Return"),    // 1
		op("Message"),   // 2 orphan
		jump("Jump", 1), // 3 orphan, unconditional: no label edge
	))

	want := []edge{
		{0, 1, 0, false},
		{1, 2, 0, false},
		{2, 3, 0, false},
	}
	if diff := cmp.Diff(want, edges(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTailReconnectStopsAtPositionOne(t *testing.T) {
	g, stats := mustBuild(t, routine(op("Return"), op("Message")))
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if stats.Unreached != 1 {
		t.Errorf("Stats.Unreached = %d, want 1", stats.Unreached)
	}
}

func TestSuccessors(t *testing.T) {
	r := routine(op("Hold"), op("End"), jump("BranchValue", 4), op("Message"), label(4))
	labels, _ := r.LabelIndex()
	tbl := script.DefaultTable()

	tests := []struct {
		pos, level int
		want       []Successor
	}{
		{0, 0, []Successor{{0, 1}}},
		{1, 0, nil},
		{2, 3, []Successor{{3, 3}, {4, 4}}},
		{4, 2, nil},
	}
	for _, tt := range tests {
		got, err := Successors(r, labels, tbl, tt.pos, tt.level)
		if err != nil {
			t.Fatalf("Successors(%d) error = %v", tt.pos, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Successors(%d) mismatch (-want +got):\n%s", tt.pos, diff)
		}
	}
}
