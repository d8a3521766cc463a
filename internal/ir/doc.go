// Package ir provides the intermediate representation consumed by the block
// compiler: programs, scripts, and the two node families (input nodes that
// produce values, stack nodes that perform statements).
//
// This package contains type definitions, decoding, and content identity
// only. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Nodes form a tree owned by one compile; nothing is shared across scripts
//   - Numeric literals keep their source text; no float rounding on decode
//   - All JSON tags use snake_case
//   - Cache identity comes from canonical JSON under a hash domain (ScriptKey)
package ir
