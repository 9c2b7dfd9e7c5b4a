package script

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scriptflow/pkg/errors"
)

// Class is the control-flow category of an operation, derived from its
// variant and, for LabelJumps, from the classification of the wrapped root.
type Class int

const (
	// ClassPlain is an Op. It may still be terminal or the hold opcode.
	ClassPlain Class = iota
	// ClassLabel is a Label.
	ClassLabel
	// ClassBranch is a LabelJump rooted in a two-way conditional.
	ClassBranch
	// ClassJump is a LabelJump rooted in the unconditional jump.
	ClassJump
	// ClassLabelJump is a LabelJump rooted in any other opcode.
	ClassLabelJump
)

var classNames = [...]string{"plain", "label", "branch", "jump", "label-jump"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Table tags opcode mnemonics. The zero value tags nothing; use
// [DefaultTable] or [ParseTable].
type Table struct {
	Hold     string   `toml:"hold"`
	Terminal []string `toml:"terminal"`
	Branch   []string `toml:"branch"`
	Jump     []string `toml:"jump"`

	terminal map[string]bool
	branch   map[string]bool
	jump     map[string]bool
}

// DefaultTable returns the built-in classification for the script bytecode.
// Jump is terminal because an unconditional jump never falls through; Hold
// is terminal but subject to the hold exception applied by the builder.
func DefaultTable() *Table {
	t := &Table{
		Hold:     "Hold",
		Terminal: []string{"End", "Return", "Jump", "JumpCommon", "Hold"},
		Branch: []string{
			"Branch",
			"BranchBit",
			"BranchDebug",
			"BranchEdit",
			"BranchExecuteSub",
			"BranchPerformance",
			"BranchScenarioNow",
			"BranchScenarioNowAfter",
			"BranchScenarioNowBefore",
			"BranchScenarioAfter",
			"BranchScenarioBefore",
			"BranchSum",
			"BranchValue",
			"BranchVariable",
			"BranchVariation",
		},
		Jump: []string{"Jump"},
	}
	t.index()
	return t
}

// ParseTable decodes a TOML classification table and validates it.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOpcodeTable, err, "decode opcode table")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.index()
	return &t, nil
}

// LoadTable reads and parses a TOML classification table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opcode table %s", path)
		}
		return nil, fmt.Errorf("read opcode table: %w", err)
	}
	return ParseTable(data)
}

// Validate checks the table for contradictions.
func (t *Table) Validate() error {
	if t.Hold == "" {
		return errors.New(errors.ErrCodeInvalidOpcodeTable, "hold opcode must be set")
	}
	if len(t.Jump) == 0 {
		return errors.New(errors.ErrCodeInvalidOpcodeTable, "at least one jump opcode is required")
	}
	for _, name := range t.Jump {
		if slices.Contains(t.Branch, name) {
			return errors.New(errors.ErrCodeInvalidOpcodeTable, "opcode %q tagged both branch and jump", name)
		}
	}
	return nil
}

// TOML renders the table in the format accepted by [ParseTable].
func (t *Table) TOML() ([]byte, error) {
	type doc struct {
		Hold     string   `toml:"hold"`
		Terminal []string `toml:"terminal"`
		Branch   []string `toml:"branch"`
		Jump     []string `toml:"jump"`
	}
	return toml.Marshal(doc{Hold: t.Hold, Terminal: t.Terminal, Branch: t.Branch, Jump: t.Jump})
}

func (t *Table) index() {
	t.terminal = toSet(t.Terminal)
	t.branch = toSet(t.Branch)
	t.jump = toSet(t.Jump)
}

// IsTerminal reports whether name ends control flow.
func (t *Table) IsTerminal(name string) bool { return lookup(t.terminal, t.Terminal, name) }

// IsBranch reports whether name is a two-way conditional.
func (t *Table) IsBranch(name string) bool { return lookup(t.branch, t.Branch, name) }

// IsJump reports whether name is an unconditional jump.
func (t *Table) IsJump(name string) bool { return lookup(t.jump, t.Jump, name) }

// IsHold reports whether name is the hold opcode.
func (t *Table) IsHold(name string) bool { return name == t.Hold }

// Classify returns the control-flow class of op.
func (t *Table) Classify(op Operation) Class {
	switch o := op.(type) {
	case *Op:
		return ClassPlain
	case *Label:
		return ClassLabel
	case *LabelJump:
		switch name := o.Root.Code.Name; {
		case t.IsBranch(name):
			return ClassBranch
		case t.IsJump(name):
			return ClassJump
		default:
			return ClassLabelJump
		}
	default:
		panic(fmt.Sprintf("script: unknown operation type %T", op))
	}
}

// EndsFlow reports whether op is an instruction tagged terminal. Labels never
// end control flow.
func (t *Table) EndsFlow(op Operation) bool {
	root := RealOp(op)
	return root != nil && t.IsTerminal(root.Code.Name)
}

// lookup consults the index when present. Tables built as literals are never
// indexed so that a shared table stays read-only.
func lookup(set map[string]bool, list []string, name string) bool {
	if set != nil {
		return set[name]
	}
	return slices.Contains(list, name)
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
