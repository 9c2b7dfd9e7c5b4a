package transform

import (
	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// SkipReason says why a branch was left unstructured.
type SkipReason string

const (
	// SkipNoConvergence means the two arms never meet, typically because one
	// of them only loops.
	SkipNoConvergence SkipReason = "no_convergence"
	// SkipNonLabelMerge means the arms meet at an operation that is not a
	// label, so no block end can be attached to it.
	SkipNonLabelMerge SkipReason = "non_label_merge"
)

// Skipped identifies a branch that [StructureBranches] left as is.
type Skipped struct {
	Vertex flow.VertexID
	ID     int
	Reason SkipReason
}

// BranchStats reports what [StructureBranches] did.
type BranchStats struct {
	Found        int
	Structured   int
	JumpsRemoved int
	Skipped      []Skipped
}

// Count returns how many skipped branches have the given reason.
func (s BranchStats) Count(r SkipReason) int {
	n := 0
	for _, sk := range s.Skipped {
		if sk.Reason == r {
			n++
		}
	}
	return n
}

// StructureBranches turns conditional branches into if/else blocks.
//
// Markers left on the graph's operations by an earlier run are cleared
// first. Branches are visited in routine order and numbered from 0. For
// each branch:
//
//  1. The branch gets an IfStart marker carrying its number.
//  2. The out-edge with the lowest flow level is the else arm (falling
//     through) and is flagged IsElse. The one with the highest level is the
//     if arm (taking the jump).
//  3. Both arms are searched forward for their nearest common vertex.
//  4. If the arms never meet, or meet at something other than a label, the
//     branch is recorded in [BranchStats.Skipped]; it keeps its IfStart but
//     no IfEnd is placed and no jump is removed.
//  5. Otherwise the label gets an IfEnd marker with the same number. On
//     each arm, an unconditional jump that leads directly into the label is
//     redundant: its in-edges, all of them, are moved to the label with
//     their attributes, and it is deleted.
//
// Deletions happen in one batch after the scan. A branch with fewer than
// two out-edges, or whose arms share a flow level, is a malformed graph and
// fails the pass with ErrCodeAmbiguousBranch.
func StructureBranches(g *flow.Graph, t *script.Table) (BranchStats, error) {
	var (
		stats  BranchStats
		doomed []flow.VertexID
		gone   = map[flow.VertexID]bool{}
		nextID int
	)
	for _, v := range g.Vertices() {
		v.Op.ClearMarkers()
	}
	for _, v := range g.Vertices() {
		if t.Classify(v.Op) != script.ClassBranch {
			continue
		}
		id := nextID
		nextID++
		stats.Found++

		elseArm, ifArm, err := arms(g, v)
		if err != nil {
			return stats, err
		}
		elseArm.IsElse = true
		v.Op.AddMarker(script.IfStart{ID: id})

		c, ok := converge(g, v.ID, elseArm, ifArm)
		if !ok {
			stats.Skipped = append(stats.Skipped, Skipped{Vertex: v.ID, ID: id, Reason: SkipNoConvergence})
			continue
		}
		end, _ := g.Vertex(c.at)
		lbl, ok := end.Op.(*script.Label)
		if !ok {
			stats.Skipped = append(stats.Skipped, Skipped{Vertex: v.ID, ID: id, Reason: SkipNonLabelMerge})
			continue
		}

		lbl.AddMarker(script.IfEnd{ID: id})
		stats.Structured++

		for _, in := range []*flow.Edge{c.elseIn, c.ifIn} {
			pred := in.From
			if gone[pred] {
				continue
			}
			pv, _ := g.Vertex(pred)
			if t.Classify(pv.Op) != script.ClassJump {
				continue
			}
			for _, e := range g.In(pred) {
				_, _ = g.AddEdge(e.From, c.at, e.Attrs)
				g.RemoveEdge(e.ID)
			}
			gone[pred] = true
			doomed = append(doomed, pred)
			stats.JumpsRemoved++
		}
	}
	g.DeleteVertices(doomed...)
	return stats, nil
}

// arms picks the else and if out-edges of a branch vertex.
func arms(g *flow.Graph, v *flow.Vertex) (elseArm, ifArm *flow.Edge, err error) {
	outs := g.Out(v.ID)
	if len(outs) < 2 {
		return nil, nil, errors.New(errors.ErrCodeAmbiguousBranch,
			"branch %v at %d has %d out-edges, want 2", v.Op, v.ID, len(outs))
	}
	elseArm, ifArm = outs[0], outs[0]
	for _, e := range outs[1:] {
		if e.FlowLevel < elseArm.FlowLevel {
			elseArm = e
		}
		if e.FlowLevel > ifArm.FlowLevel {
			ifArm = e
		}
	}
	if elseArm.FlowLevel == ifArm.FlowLevel {
		return nil, nil, errors.New(errors.ErrCodeAmbiguousBranch,
			"branch %v at %d has both arms at flow level %d", v.Op, v.ID, elseArm.FlowLevel)
	}
	return elseArm, ifArm, nil
}
