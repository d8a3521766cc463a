// Package compiler turns one IR script into the source text of a callable
// unit for the block host.
//
// A Generator walks the script's statement tree once. Input nodes descend
// into Values, which know how to render themselves as numbers, strings,
// booleans and so on, and which carry enough compile-time type knowledge to
// pick cheaper operators where the result is provably the same. Statement
// nodes append to the generator's source buffer.
//
// Scripts flagged as yielding compile to generator functions; the generator
// decides where they suspend. Warp scripts never suspend unconditionally and
// only check for lack of forward progress inside loops.
//
// Thread-safety: a Generator belongs to a single compile. Concurrent compiles
// each use their own Generator; they may share a Registry and a names.Set.
package compiler
