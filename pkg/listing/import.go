package listing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scriptflow/pkg/errors"
	"github.com/matzehuels/scriptflow/pkg/observability"
	"github.com/matzehuels/scriptflow/pkg/script"
)

type document struct {
	Routines []routineDoc `yaml:"routines"`
}

type routineDoc struct {
	ID       *int    `yaml:"id"`
	Type     string  `yaml:"type"`
	LinkedTo int     `yaml:"linked_to"`
	Ops      []opDoc `yaml:"ops"`
}

type opDoc struct {
	Offset int        `yaml:"offset"`
	Op     string     `yaml:"op"`
	Code   int        `yaml:"code"`
	Params []any      `yaml:"params"`
	Label  *int       `yaml:"label"`
	Target *targetDoc `yaml:"target"`
}

type targetDoc struct {
	Routine *int `yaml:"routine"`
	Label   *int `yaml:"label"`
}

// Read decodes a YAML or JSON listing from r.
//
// The input must be an object with a "routines" array:
//
//	{"routines": [{"id": 0, "ops": [{"op": "Return"}]}]}
//
// Routine ids must be unique. Operations are validated for shape only; label
// references are resolved later, when the graph is built.
func Read(r io.Reader) ([]*script.Routine, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidListing, err, "decode listing")
	}

	seen := make(map[int]bool, len(doc.Routines))
	routines := make([]*script.Routine, len(doc.Routines))
	for i, rd := range doc.Routines {
		rt, err := rd.routine(i)
		if err != nil {
			return nil, err
		}
		if seen[rt.ID] {
			return nil, errors.New(errors.ErrCodeInvalidListing, "duplicate routine id %d", rt.ID)
		}
		seen[rt.ID] = true
		routines[i] = rt
	}
	return routines, nil
}

// ReadFile reads a listing from a file.
// This is a convenience wrapper around [Read] for file-based input.
func ReadFile(path string) ([]*script.Routine, error) {
	start := time.Now()
	routines, err := readFile(path)
	observability.Listing().OnRead(context.Background(), path, len(routines), time.Since(start), err)
	return routines, err
}

func readFile(path string) ([]*script.Routine, error) {
	if err := errors.ValidateListingPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "listing %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	routines, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return routines, nil
}

func (rd routineDoc) routine(i int) (*script.Routine, error) {
	if rd.ID == nil {
		return nil, errors.New(errors.ErrCodeInvalidListing, "routine #%d: missing id", i)
	}
	rt := &script.Routine{ID: *rd.ID, Type: script.RoutineGeneric, LinkedTo: rd.LinkedTo}
	if rd.Type != "" {
		typ, err := script.ParseRoutineType(rd.Type)
		if err != nil {
			return nil, fmt.Errorf("routine %d: %w", rt.ID, err)
		}
		rt.Type = typ
	}

	rt.Ops = make([]script.Operation, len(rd.Ops))
	for pos, od := range rd.Ops {
		op, err := od.operation(rt.ID)
		if err != nil {
			return nil, fmt.Errorf("routine %d position %d: %w", rt.ID, pos, err)
		}
		rt.Ops[pos] = op
	}
	return rt, nil
}

func (od opDoc) operation(routine int) (script.Operation, error) {
	if od.Label != nil {
		if od.Op != "" || od.Target != nil {
			return nil, errors.New(errors.ErrCodeInvalidListing, "label entry must not carry op or target")
		}
		return &script.Label{ID: *od.Label}, nil
	}

	if err := errors.ValidateOpcodeName(od.Op); err != nil {
		return nil, err
	}
	op := &script.Op{
		Offset: od.Offset,
		Code:   script.Opcode{ID: od.Code, Name: od.Op},
		Params: od.Params,
	}
	if od.Target == nil {
		return op, nil
	}

	if od.Target.Label == nil {
		return nil, errors.New(errors.ErrCodeInvalidListing, "%s: target without label", od.Op)
	}
	ref := script.LabelRef{Routine: routine, Label: *od.Target.Label}
	if od.Target.Routine != nil {
		ref.Routine = *od.Target.Routine
	}
	return &script.LabelJump{Root: op, Target: ref}, nil
}
