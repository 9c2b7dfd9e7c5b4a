package transform

import (
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// CollapseJumpChains removes labels that exist only to jump to another
// label.
//
// For every unconditional jump J whose single in-edge comes from a label L1
// and whose single out-edge reaches another label L2, each in-edge p->L1 is
// replaced by p->L2 with the same attributes. J and L1 are then deleted
// together with every other vertex marked in the same scan, in one batch.
//
//	Before: p -> L1 -> J -> L2 -> ...
//	After:  p -> L2 -> ...
//
// Consecutive chains resolve in a single scan. A jump back to its own label
// (an idle loop) is left alone. The pass has a fixed point: running it on
// its own output changes nothing. It returns the number of chains collapsed.
func CollapseJumpChains(g *flow.Graph, t *script.Table) int {
	var doomed []flow.VertexID
	for _, v := range g.Vertices() {
		if t.Classify(v.Op) != script.ClassJump {
			continue
		}
		ins := g.In(v.ID)
		if len(ins) != 1 || !isLabel(g, ins[0].From) {
			continue
		}
		outs := g.Out(v.ID)
		if len(outs) != 1 {
			continue
		}
		first, second := ins[0].From, outs[0].To
		if second == first || !isLabel(g, second) {
			continue
		}

		redirected := g.In(first)
		for _, e := range redirected {
			// Both endpoints are live, so AddEdge cannot fail.
			_, _ = g.AddEdge(e.From, second, e.Attrs)
		}
		for _, e := range redirected {
			g.RemoveEdge(e.ID)
		}
		doomed = append(doomed, v.ID, first)
	}
	g.DeleteVertices(doomed...)
	return len(doomed) / 2
}

func isLabel(g *flow.Graph, id flow.VertexID) bool {
	v, ok := g.Vertex(id)
	if !ok {
		return false
	}
	_, ok = v.Op.(*script.Label)
	return ok
}
