// Package harness runs compile scenarios: a program document, a set of
// assertions about the factories built from it, and an optional golden
// snapshot of every emitted source.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program: programs/loop.yaml   # relative to the scenario file
//	assertions:
//	  - type: source_contains
//	    script: entry
//	    text: "for (var a0 = 3; a0 >= 0.5; a0--) {"
//	  - type: yield_points
//	    script: entry
//	    count: 1
//	  - type: compile_error
//	    script: broken
//	    code: E202
//
// # Assertion Types
//
//   - source_contains: The script's source contains text
//   - source_not_contains: The script's source does not contain text
//   - source_order: The texts appear in the script's source in order
//   - yield_points: The factory placed exactly count yields
//   - setup_bindings: The factory hoisted exactly count setup bindings
//   - factory: The factory's flags match expect (subset match)
//   - compile_error: The script failed with code
//
// # Deterministic Testing
//
// Every scenario builds with a fresh name set, a deterministic clock and
// sequential record IDs against a fresh in-memory store, so two runs emit
// byte-identical sources and snapshots can be compared with golden files.
package harness
