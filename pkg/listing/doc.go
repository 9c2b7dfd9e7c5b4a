// Package listing reads disassembled scripts and writes recovered control
// flow.
//
// # Overview
//
// A listing is the decoded form of a compiled script: one entry per routine,
// each holding the routine's operations in bytecode order. Decoding the
// bytecode itself happens elsewhere; this package only deals with the
// already-decoded form.
//
// # Input Format
//
// Listings are YAML. Since YAML is a superset of JSON, the same reader
// accepts JSON listings.
//
//	routines:
//	  - id: 0
//	    type: generic
//	    ops:
//	      - {offset: 0, op: BranchValue, params: [3, 1], target: {label: 3}}
//	      - {offset: 6, op: Message, params: ["hello"]}
//	      - {offset: 9, op: Jump, target: {label: 6}}
//	      - {label: 3}
//	      - {offset: 12, op: Message, params: ["bye"]}
//	      - {label: 6}
//	      - {offset: 15, op: Return}
//
// Each entry in ops is exactly one of:
//   - a label: only the label field is set
//   - a label jump: op and target are set; target.routine defaults to the
//     enclosing routine
//   - a plain operation: op is set, target is not
//
// Routine fields:
//   - id: Unique routine identifier (required)
//   - type: generic, actor, object, performer or coroutine (default generic)
//   - linked_to: Id of the entity the routine belongs to
//
// # Import
//
// Use [ReadFile] to read a listing from a path, or [Read] to read from any
// io.Reader:
//
//	routines, err := listing.ReadFile("script.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Malformed entries are reported with ErrCodeInvalidListing and the routine
// and position that caused the problem.
//
// # Export
//
// Use [ExportJSON] to write a pipeline result to a file, or [WriteJSON] to
// write to any io.Writer. Vertices are written in current order with their
// stable id, rendered text and markers; edges carry their flow level and
// else and loop flags.
package listing
