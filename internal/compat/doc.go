// Package compat is the runtime side of the compatibility bridge: the
// block utility handed to blocks that have no compiled form, the
// numbered-branch protocol that conditional and loop blocks use to select
// which substack runs next, and the thread state machine a scheduler drives
// compiled scripts with.
//
// A bridge call proceeds as follows:
//
//  1. The compiled script calls into the bridge with the block's inputs.
//  2. Execute initialises the Utility for the calling thread and runs the
//     block implementation.
//  3. A conditional or loop block calls StartBranch to choose a substack.
//     The branch number is returned to the caller, which runs the matching
//     arm and polls again; 0 ends the block.
//
// RunBranches drives step 3 from Go for hosts that execute blocks natively.
package compat
