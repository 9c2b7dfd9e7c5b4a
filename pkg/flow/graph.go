package flow

import (
	"errors"
	"slices"

	"github.com/matzehuels/scriptflow/pkg/script"
)

var (
	// ErrUnknownSourceVertex is returned by [Graph.AddEdge] when the From
	// vertex does not exist or was deleted.
	ErrUnknownSourceVertex = errors.New("unknown source vertex")

	// ErrUnknownTargetVertex is returned by [Graph.AddEdge] when the To
	// vertex does not exist or was deleted.
	ErrUnknownTargetVertex = errors.New("unknown target vertex")
)

// VertexID is a stable vertex handle. It equals the routine position the
// vertex was created for and is never reused, so it stays valid across
// deletions while [Graph.Index] does not.
type VertexID int

// EdgeID is a stable edge handle, assigned in insertion order.
type EdgeID int

// Attrs are the per-edge attributes carried through rewrites.
type Attrs struct {
	// FlowLevel ranks alternative successors of one vertex: lower is the
	// fallthrough path, higher the jump path. Only comparable among the
	// out-edges of a single vertex.
	FlowLevel int `json:"flow_level"`
	// IsElse marks the lower-ranked arm of a structured branch.
	IsElse bool `json:"is_else"`
	// Loop marks an edge that closes a cycle.
	Loop bool `json:"loop"`
}

// Vertex holds the operation at one routine position.
type Vertex struct {
	ID VertexID
	Op script.Operation
}

// Edge is a directed control transfer.
type Edge struct {
	ID   EdgeID
	From VertexID
	To   VertexID
	Attrs
}

// Graph is the control flow graph of one routine.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use; routines are independent, so give each worker its own graph.
type Graph struct {
	order    []VertexID // live vertices, ascending
	vertices map[VertexID]*Vertex
	edges    map[EdgeID]*Edge
	out      map[VertexID][]EdgeID
	in       map[VertexID][]EdgeID
	nextEdge EdgeID
}

// New creates a graph with one vertex per operation and no edges.
func New(ops []script.Operation) *Graph {
	g := &Graph{
		order:    make([]VertexID, len(ops)),
		vertices: make(map[VertexID]*Vertex, len(ops)),
		edges:    make(map[EdgeID]*Edge),
		out:      make(map[VertexID][]EdgeID),
		in:       make(map[VertexID][]EdgeID),
	}
	for i, op := range ops {
		id := VertexID(i)
		g.order[i] = id
		g.vertices[id] = &Vertex{ID: id, Op: op}
	}
	return g
}

// Len returns the number of live vertices.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertex returns the vertex with the given handle.
func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// At returns the vertex at current position i. Positions shift after every
// [Graph.DeleteVertices]; do not keep them across a deletion.
func (g *Graph) At(i int) *Vertex { return g.vertices[g.order[i]] }

// Index returns the current position of a vertex, or -1 if it was deleted.
func (g *Graph) Index(id VertexID) int {
	i, ok := slices.BinarySearch(g.order, id)
	if !ok {
		return -1
	}
	return i
}

// Vertices returns the live vertices in routine order.
func (g *Graph) Vertices() []*Vertex {
	vs := make([]*Vertex, len(g.order))
	for i, id := range g.order {
		vs[i] = g.vertices[id]
	}
	return vs
}

// AddEdge adds a directed edge between two live vertices. Parallel edges are
// allowed.
func (g *Graph) AddEdge(from, to VertexID, a Attrs) (*Edge, error) {
	if _, ok := g.vertices[from]; !ok {
		return nil, ErrUnknownSourceVertex
	}
	if _, ok := g.vertices[to]; !ok {
		return nil, ErrUnknownTargetVertex
	}
	e := &Edge{ID: g.nextEdge, From: from, To: to, Attrs: a}
	g.nextEdge++
	g.edges[e.ID] = e
	g.out[from] = append(g.out[from], e.ID)
	g.in[to] = append(g.in[to], e.ID)
	return e, nil
}

// RemoveEdge removes an edge. Unknown ids are ignored.
func (g *Graph) RemoveEdge(id EdgeID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	delete(g.edges, id)
	g.out[e.From] = slices.DeleteFunc(g.out[e.From], func(x EdgeID) bool { return x == id })
	g.in[e.To] = slices.DeleteFunc(g.in[e.To], func(x EdgeID) bool { return x == id })
}

// Out returns the out-edges of a vertex in insertion order.
func (g *Graph) Out(id VertexID) []*Edge { return g.resolve(g.out[id]) }

// In returns the in-edges of a vertex in insertion order.
func (g *Graph) In(id VertexID) []*Edge { return g.resolve(g.in[id]) }

// OutDegree returns the number of out-edges of a vertex.
func (g *Graph) OutDegree(id VertexID) int { return len(g.out[id]) }

// InDegree returns the number of in-edges of a vertex.
func (g *Graph) InDegree(id VertexID) int { return len(g.in[id]) }

func (g *Graph) resolve(ids []EdgeID) []*Edge {
	if len(ids) == 0 {
		return nil
	}
	es := make([]*Edge, len(ids))
	for i, id := range ids {
		es[i] = g.edges[id]
	}
	return es
}

// Edges returns all edges grouped by source vertex in routine order, and by
// insertion order within one source. This order is stable across runs.
func (g *Graph) Edges() []*Edge {
	es := make([]*Edge, 0, len(g.edges))
	for _, id := range g.order {
		es = append(es, g.resolve(g.out[id])...)
	}
	return es
}

// DeleteVertices removes the given vertices and every edge incident to them,
// in one batch. Unknown or repeated ids are ignored. It returns the number
// of vertices removed.
func (g *Graph) DeleteVertices(ids ...VertexID) int {
	doomed := make(map[VertexID]bool, len(ids))
	for _, id := range ids {
		if _, ok := g.vertices[id]; ok {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return 0
	}
	for id := range doomed {
		for _, e := range slices.Clone(g.out[id]) {
			g.RemoveEdge(e)
		}
		for _, e := range slices.Clone(g.in[id]) {
			g.RemoveEdge(e)
		}
		delete(g.vertices, id)
		delete(g.out, id)
		delete(g.in, id)
	}
	g.order = slices.DeleteFunc(g.order, func(id VertexID) bool { return doomed[id] })
	return len(doomed)
}

// Reachable reports whether to can be reached from from by following
// edges. A vertex always reaches itself.
func (g *Graph) Reachable(from, to VertexID) bool {
	if from == to {
		return true
	}
	seen := map[VertexID]bool{from: true}
	stack := []VertexID{from}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, eid := range g.out[v] {
			next := g.edges[eid].To
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
