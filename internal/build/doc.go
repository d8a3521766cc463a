// Package build compiles every script of a program and records the results.
//
// A build walks Program.Scripts() in their stable order: the entry script,
// then procedures sorted by variant. Scripts compile independently, so a
// failure in one is recorded against that script and the rest still
// compile.
//
// ARCHITECTURE:
//
// Compile workers, single writer:
// Cache misses are queued and compiled by up to Jobs workers. Results land
// in per-script slots; once every worker has returned, the calling
// goroutine writes factories and failures to the store in script order.
// Store sequence numbers therefore never depend on scheduling.
//
// Factory cache:
// With a store attached, each script is looked up by ir.ScriptKey and
// ir.CompilerVersion before compiling. A hit reuses the stored source
// verbatim; the factory keeps the names it was compiled with. Named
// function expressions bind only inside their own body, so names reused
// across builds never clash in the host.
//
// Logical clock:
// Records are stamped with a monotonic seq from a Sequencer, never with
// wall-clock time.
package build
