// Package flow provides the per-routine control flow graph.
//
// # Overview
//
// A [Graph] starts with one vertex per routine position and no edges. The
// builder in package build adds the possible control successors; the passes
// in package transform then rewrite the graph in place.
//
// # Vertex Identity
//
// Rewrites delete vertices in batches, which shifts positional indices.
// Every vertex therefore carries a stable [VertexID] (the routine position
// it was created for). Passes address vertices by VertexID; [Graph.Index]
// and [Graph.At] are positional and must be re-derived after each
// [Graph.DeleteVertices].
//
// # Edges
//
// An [Edge] carries [Attrs]: the flow level ranking alternative successors
// of its source, the else flag set by branch structuring, and the loop flag
// set when the edge closes a cycle. Parallel edges are permitted, since a
// branch may both fall through to and jump to the same position.
//
// # Iteration Order
//
// [Graph.Vertices] returns vertices in routine order. [Graph.Edges] groups
// edges by source in routine order and keeps insertion order within one
// source. Downstream consumers may rely on both orders.
package flow
