package build

import (
	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// Stats describes the graph produced by [Build].
type Stats struct {
	// Vertices equals the routine length.
	Vertices int
	// Edges is the total edge count, tail edges included.
	Edges int
	// LoopEdges counts edges flagged as closing a cycle.
	LoopEdges int
	// TailEdges counts edges added by the tail reconnector.
	TailEdges int
	// Unreached counts vertices other than the entry that still have no
	// incoming edge after tail reconnection.
	Unreached int
}

// frame is one pending expansion on the work list: the successors of pos,
// of which the first next have already been emitted.
type frame struct {
	pos  int
	succ []Successor
	next int
}

// Build converts a routine into its control flow graph.
//
// Expansion is depth-first from position 0 over an explicit stack. A shared
// visited set bounds the walk: a visited position is never expanded twice,
// but every edge into it is still recorded. An edge is flagged Loop when its
// target already reaches its source, i.e. the edge closes a cycle. A
// successor inherits the flow level of the edge that led to it.
//
// After the walk, [ReconnectTail] attaches trailing code that nothing
// reached.
func Build(r *script.Routine, t *script.Table) (*flow.Graph, Stats, error) {
	g := flow.New(r.Ops)
	stats := Stats{Vertices: len(r.Ops)}
	if len(r.Ops) == 0 {
		return g, stats, nil
	}

	labels, err := r.LabelIndex()
	if err != nil {
		return nil, stats, err
	}

	visited := make([]bool, len(r.Ops))
	visited[0] = true
	succ, err := Successors(r, labels, t, 0, 0)
	if err != nil {
		return nil, stats, err
	}
	stack := []frame{{pos: 0, succ: succ}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.succ) {
			stack = stack[:len(stack)-1]
			continue
		}
		s := top.succ[top.next]
		top.next++

		from, to := flow.VertexID(top.pos), flow.VertexID(s.Pos)
		loop := g.Reachable(to, from)
		if _, err := g.AddEdge(from, to, flow.Attrs{FlowLevel: s.FlowLevel, Loop: loop}); err != nil {
			return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "routine %d: edge %d->%d", r.ID, from, to)
		}

		if visited[s.Pos] {
			continue
		}
		visited[s.Pos] = true
		succ, err := Successors(r, labels, t, s.Pos, s.FlowLevel)
		if err != nil {
			return nil, stats, err
		}
		stack = append(stack, frame{pos: s.Pos, succ: succ})
	}

	tail, err := ReconnectTail(g, r, labels, t)
	if err != nil {
		return nil, stats, err
	}

	stats.TailEdges = tail
	stats.Edges = g.EdgeCount()
	for _, e := range g.Edges() {
		if e.Loop {
			stats.LoopEdges++
		}
	}
	for _, v := range g.Vertices()[1:] {
		if g.InDegree(v.ID) == 0 {
			stats.Unreached++
		}
	}
	return g, stats, nil
}
