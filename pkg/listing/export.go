package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scriptflow/pkg/flow"
	"github.com/matzehuels/scriptflow/pkg/observability"
	"github.com/matzehuels/scriptflow/pkg/pipeline"
	"github.com/matzehuels/scriptflow/pkg/script"
)

type output struct {
	Routines []routineOut `json:"routines"`
}

type routineOut struct {
	ID       int           `json:"id"`
	Type     string        `json:"type"`
	LinkedTo int           `json:"linked_to,omitempty"`
	Error    string        `json:"error,omitempty"`
	Stats    *routineStats `json:"stats,omitempty"`
	Vertices []vertexOut   `json:"vertices,omitempty"`
	Edges    []edgeOut     `json:"edges,omitempty"`
}

type routineStats struct {
	LoopEdges       int `json:"loop_edges"`
	TailEdges       int `json:"tail_edges"`
	ChainsCollapsed int `json:"chains_collapsed"`
	Branches        int `json:"branches"`
	Structured      int `json:"structured"`
	Unstructured    int `json:"unstructured"`
	JumpsRemoved    int `json:"jumps_removed"`
}

type vertexOut struct {
	ID      int              `json:"id"`
	Kind    string           `json:"kind"`
	Text    string           `json:"text"`
	Offset  *int             `json:"offset,omitempty"`
	Opcode  *script.Opcode   `json:"opcode,omitempty"`
	Params  []any            `json:"params,omitempty"`
	Label   *int             `json:"label,omitempty"`
	Target  *script.LabelRef `json:"target,omitempty"`
	Markers []string         `json:"markers,omitempty"`
}

type edgeOut struct {
	From int `json:"from"`
	To   int `json:"to"`
	flow.Attrs
}

// WriteJSON encodes a pipeline result as JSON and writes it to w.
// Routines appear in result order; failed routines carry only their error.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	out := output{Routines: make([]routineOut, len(res.Routines))}
	for i, rr := range res.Routines {
		out.Routines[i] = routineJSON(rr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a pipeline result to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(path string, res *pipeline.Result) error {
	var buf bytes.Buffer
	err := WriteJSON(&buf, res)
	if err == nil {
		err = os.WriteFile(path, buf.Bytes(), 0o644)
		if err != nil {
			err = fmt.Errorf("write %s: %w", path, err)
		}
	}
	observability.Listing().OnExport(context.Background(), path, buf.Len(), err)
	return err
}

func routineJSON(rr *pipeline.RoutineResult) routineOut {
	ro := routineOut{ID: rr.ID}
	if rr.Routine != nil {
		ro.Type = rr.Routine.Type.String()
		ro.LinkedTo = rr.Routine.LinkedTo
	}
	if !rr.OK() {
		if rr.Err != nil {
			ro.Error = rr.Err.Error()
		}
		return ro
	}

	ro.Stats = &routineStats{
		LoopEdges:       rr.Build.LoopEdges,
		TailEdges:       rr.Build.TailEdges,
		ChainsCollapsed: rr.Transform.ChainsCollapsed,
		Branches:        rr.Transform.BranchesFound,
		Structured:      rr.Transform.BranchesStructured,
		Unstructured:    rr.Transform.Unstructured(),
		JumpsRemoved:    rr.Transform.JumpsRemoved,
	}
	for _, v := range rr.Graph.Vertices() {
		ro.Vertices = append(ro.Vertices, vertexJSON(v))
	}
	for _, e := range rr.Graph.Edges() {
		ro.Edges = append(ro.Edges, edgeOut{From: int(e.From), To: int(e.To), Attrs: e.Attrs})
	}
	return ro
}

func vertexJSON(v *flow.Vertex) vertexOut {
	vo := vertexOut{ID: int(v.ID), Text: fmt.Sprint(v.Op)}
	switch op := v.Op.(type) {
	case *script.Op:
		vo.Kind = "op"
		vo.Offset, vo.Opcode, vo.Params = &op.Offset, &op.Code, op.Params
	case *script.Label:
		vo.Kind = "label"
		vo.Label = &op.ID
	case *script.LabelJump:
		vo.Kind = "label_jump"
		vo.Offset, vo.Opcode, vo.Params = &op.Root.Offset, &op.Root.Code, op.Root.Params
		vo.Target = &op.Target
	default:
		panic(fmt.Sprintf("listing: unknown operation %T", v.Op))
	}
	for _, m := range v.Op.Markers() {
		vo.Markers = append(vo.Markers, m.String())
	}
	return vo
}
