package script

import (
	"fmt"
	"strings"
)

// Opcode identifies an instruction by its numeric id and mnemonic. The
// mnemonic is what the classification [Table] keys on.
type Opcode struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// String returns the opcode mnemonic.
func (o Opcode) String() string { return o.Name }

// Operation is one position of a routine. The set of implementations is
// closed: [*Op], [*Label] and [*LabelJump]. Use a type switch (or
// [Table.Classify]) to dispatch, and treat the default case as unreachable.
type Operation interface {
	// Markers returns the structural markers attached so far, in order.
	Markers() []Marker
	// AddMarker appends a structural marker.
	AddMarker(Marker)
	// ClearMarkers drops all structural markers.
	ClearMarkers()

	isOperation()
}

// markers implements the marker bookkeeping shared by every variant.
type markers struct {
	list []Marker
}

func (m *markers) Markers() []Marker  { return m.list }
func (m *markers) AddMarker(mk Marker) { m.list = append(m.list, mk) }
func (m *markers) ClearMarkers()       { m.list = nil }

// Op is a plain decoded instruction.
type Op struct {
	markers

	Offset int    // Byte offset in the source script
	Code   Opcode // Instruction identity
	Params []any  // Decoded operands, opaque to control flow recovery
}

func (*Op) isOperation() {}

// String renders the op as "Name(params...)".
func (o *Op) String() string {
	parts := make([]string, len(o.Params))
	for i, p := range o.Params {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s(%s)%s", o.Code.Name, strings.Join(parts, ", "), markerSuffix(o.list))
}

// Label is a named jump target. Its ID is unique within its routine.
type Label struct {
	markers

	ID int
}

func (*Label) isOperation() {}

func (l *Label) String() string {
	return fmt.Sprintf("@label_%d%s", l.ID, markerSuffix(l.list))
}

// LabelRef addresses a label, possibly in another routine.
type LabelRef struct {
	Routine int `json:"routine" yaml:"routine"`
	Label   int `json:"label" yaml:"label"`
}

// LabelJump wraps the real instruction (a branch, an unconditional jump or
// any other label-taking opcode) together with the label it targets.
type LabelJump struct {
	markers

	Root   *Op
	Target LabelRef
}

func (*LabelJump) isOperation() {}

// Local reports whether the jump target lives in the routine with the given id.
func (j *LabelJump) Local(routine int) bool { return j.Target.Routine == routine }

func (j *LabelJump) String() string {
	return fmt.Sprintf("%s -> @label_%d%s", j.Root.Code.Name, j.Target.Label, markerSuffix(j.list))
}

// RealOp returns the instruction that determines control flow: the wrapped
// root for a LabelJump, the op itself for an Op, and nil for a Label.
func RealOp(op Operation) *Op {
	switch o := op.(type) {
	case *Op:
		return o
	case *LabelJump:
		return o.Root
	case *Label:
		return nil
	default:
		panic(fmt.Sprintf("script: unknown operation type %T", op))
	}
}

// Marker is a structural annotation attached to an operation by the branch
// structurer. Implementations: [IfStart], [IfEnd].
type Marker interface {
	fmt.Stringer
	isMarker()
}

// IfStart marks the branch operation opening if-construct ID.
type IfStart struct{ ID int }

// IfEnd marks the label where the arms of if-construct ID reunite.
type IfEnd struct{ ID int }

func (IfStart) isMarker() {}
func (IfEnd) isMarker()   {}

func (m IfStart) String() string { return fmt.Sprintf("IfStart(%d)", m.ID) }
func (m IfEnd) String() string   { return fmt.Sprintf("IfEnd(%d)", m.ID) }

func markerSuffix(ms []Marker) string {
	if len(ms) == 0 {
		return ""
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return " (" + strings.Join(parts, ";") + ")"
}
