package build

import (
	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/script"
)

// Successor is a candidate control successor of an operation.
type Successor struct {
	FlowLevel int
	Pos       int
}

// Successors returns the possible control successors of the operation at
// pos, in the order they are expanded:
//
//  1. fallthrough to pos+1 at level, unless the real op is terminal
//  2. the label target at level+1, if the op is a LabelJump into this routine
//  3. fallthrough to pos+1 at level if the real op is the hold opcode and the
//     next op is terminal (a hold defers termination by one slot)
//
// Rule 3 adds nothing when rule 1 already produced the fallthrough.
func Successors(r *script.Routine, labels map[int]int, t *script.Table, pos, level int) ([]Successor, error) {
	op := r.Ops[pos]
	root := script.RealOp(op)
	hasNext := pos+1 < len(r.Ops)

	var next []Successor
	fallthru := hasNext && !t.EndsFlow(op)
	if fallthru {
		next = append(next, Successor{FlowLevel: level, Pos: pos + 1})
	}

	if lj, ok := op.(*script.LabelJump); ok && lj.Local(r.ID) {
		target, err := labelPos(r, labels, lj)
		if err != nil {
			return nil, err
		}
		next = append(next, Successor{FlowLevel: level + 1, Pos: target})
	}

	if !fallthru && hasNext && root != nil && t.IsHold(root.Code.Name) && t.EndsFlow(r.Ops[pos+1]) {
		next = append(next, Successor{FlowLevel: level, Pos: pos + 1})
	}

	return next, nil
}

func labelPos(r *script.Routine, labels map[int]int, lj *script.LabelJump) (int, error) {
	target, ok := labels[lj.Target.Label]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnknownLabel,
			"routine %d: jump to label %d which does not exist", r.ID, lj.Target.Label)
	}
	return target, nil
}
