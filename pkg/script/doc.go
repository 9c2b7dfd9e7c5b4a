// Package script defines the already-decoded input of control flow recovery.
//
// A script is a list of [Routine] values. Each routine is an ordered list of
// [Operation] values drawn from a closed set of variants:
//
//   - [*Op]: a plain instruction with opcode and opaque parameters
//   - [*Label]: a jump target, unique per routine
//   - [*LabelJump]: an instruction that also targets a label, possibly in
//     another routine
//
// Opcodes are tagged by a [Table] as terminal, branch, jump or hold. The
// table is normally the built-in [DefaultTable]; [LoadTable] reads a TOML
// override:
//
//	hold     = "Hold"
//	terminal = ["End", "Return", "Jump", "JumpCommon", "Hold"]
//	branch   = ["Branch", "BranchValue"]
//	jump     = ["Jump"]
//
// Structural [Marker] values ([IfStart], [IfEnd]) are attached to operations
// by the branch structurer in package transform.
package script
