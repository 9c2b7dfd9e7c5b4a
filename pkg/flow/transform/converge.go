package transform

import "github.com/matzehuels/scriptflow/pkg/flow"

// hop records how a breadth-first search first reached a vertex.
type hop struct {
	dist int
	via  *flow.Edge
}

// convergence is the first vertex reachable from both arms of a branch,
// with the edge each arm's search used to enter it.
type convergence struct {
	at     flow.VertexID
	elseIn *flow.Edge
	ifIn   *flow.Edge
}

// converge searches forward from both arm targets of the branch at origin.
// Searches never pass back through origin: an arm that only returns to the
// branch is a loop, not a way to the merge point.
//
// Among the vertices reached by both searches it picks the one with the
// smallest combined distance, earliest in routine order on ties.
func converge(g *flow.Graph, origin flow.VertexID, elseArm, ifArm *flow.Edge) (convergence, bool) {
	fromElse := search(g, origin, elseArm)
	fromIf := search(g, origin, ifArm)

	var (
		best  convergence
		score = -1
	)
	for _, v := range g.Vertices() {
		a, okA := fromElse[v.ID]
		b, okB := fromIf[v.ID]
		if !okA || !okB {
			continue
		}
		if s := a.dist + b.dist; score < 0 || s < score {
			score = s
			best = convergence{at: v.ID, elseIn: a.via, ifIn: b.via}
		}
	}
	return best, score >= 0
}

// search is a breadth-first walk starting with the arm edge itself, so the
// arm target is entered via the branch edge.
func search(g *flow.Graph, origin flow.VertexID, arm *flow.Edge) map[flow.VertexID]hop {
	seen := map[flow.VertexID]hop{}
	if arm.To == origin {
		return seen
	}
	seen[arm.To] = hop{dist: 0, via: arm}
	queue := []flow.VertexID{arm.To}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		d := seen[v].dist
		for _, e := range g.Out(v) {
			if e.To == origin {
				continue
			}
			if _, ok := seen[e.To]; ok {
				continue
			}
			seen[e.To] = hop{dist: d + 1, via: e}
			queue = append(queue, e.To)
		}
	}
	return seen
}
