package build

import (
	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// ReconnectTail attaches orphaned trailing operations by physical adjacency.
//
// Walking backward from the last position, every position without an
// incoming edge gets an edge from its predecessor at flow level 0. If that
// position is a LabelJump into this routine that is not an unconditional
// jump, it also gets an edge to its label at flow level 1. That edge is
// flagged Loop when the label precedes the position and already has
// incoming edges. The walk stops at the first position that already has an
// incoming edge; positions 0 and 1 are never reconnected.
//
// It must run on a freshly built graph, where handles equal positions. It
// returns the number of edges added.
func ReconnectTail(g *flow.Graph, r *script.Routine, labels map[int]int, t *script.Table) (int, error) {
	// TODO: decide whether the Loop flag should use g.Reachable like Build
	// does; it stays positional until a listing shows the two disagree.
	added := 0
	for pos := len(r.Ops) - 1; pos > 1; pos-- {
		id := flow.VertexID(pos)
		if g.InDegree(id) > 0 {
			break
		}
		if _, err := g.AddEdge(id-1, id, flow.Attrs{FlowLevel: 0}); err != nil {
			return added, errors.Wrap(errors.ErrCodeInternal, err, "routine %d: tail edge %d->%d", r.ID, id-1, id)
		}
		added++

		lj, ok := r.Ops[pos].(*script.LabelJump)
		if !ok || !lj.Local(r.ID) || t.Classify(lj) == script.ClassJump {
			continue
		}
		target, err := labelPos(r, labels, lj)
		if err != nil {
			return added, err
		}
		tid := flow.VertexID(target)
		loop := target < pos && g.InDegree(tid) > 0
		if _, err := g.AddEdge(id, tid, flow.Attrs{FlowLevel: 1, Loop: loop}); err != nil {
			return added, errors.Wrap(errors.ErrCodeInternal, err, "routine %d: tail edge %d->%d", r.ID, id, tid)
		}
		added++
	}
	return added, nil
}
