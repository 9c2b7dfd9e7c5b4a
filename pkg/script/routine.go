package script

import (
	"fmt"

	"github.com/matzehuels/scriptflow/pkg/errors"
)

// RoutineType is the kind of entity a routine drives.
type RoutineType int

const (
	RoutineGeneric   RoutineType = 1
	RoutineActor     RoutineType = 3
	RoutineObject    RoutineType = 4
	RoutinePerformer RoutineType = 5
	RoutineCoroutine RoutineType = 9
)

var routineTypeNames = map[RoutineType]string{
	RoutineGeneric:   "generic",
	RoutineActor:     "actor",
	RoutineObject:    "object",
	RoutinePerformer: "performer",
	RoutineCoroutine: "coroutine",
}

func (t RoutineType) String() string {
	if s, ok := routineTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("RoutineType(%d)", int(t))
}

// ParseRoutineType maps a routine type name back to its value.
func ParseRoutineType(s string) (RoutineType, error) {
	for t, name := range routineTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidListing, "unknown routine type %q", s)
}

// Routine is one independently analysed sequence of operations. Position in
// Ops is the only addressing scheme.
type Routine struct {
	ID       int
	Type     RoutineType
	LinkedTo int
	Ops      []Operation
}

// LabelIndex maps each label id to its position in the routine.
func (r *Routine) LabelIndex() (map[int]int, error) {
	idx := make(map[int]int)
	for i, op := range r.Ops {
		l, ok := op.(*Label)
		if !ok {
			continue
		}
		if prev, dup := idx[l.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateLabel,
				"routine %d: label %d at positions %d and %d", r.ID, l.ID, prev, i)
		}
		idx[l.ID] = i
	}
	return idx, nil
}
