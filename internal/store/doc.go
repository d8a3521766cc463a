// Package store provides SQLite-backed storage for compiled script
// factories.
//
// The store holds three tables:
//   - Builds: one record per whole-program build
//   - Factories: the latest compiled source per script key
//   - Compile failures: scripts a build could not compile, with their codes
//
// # Cache Identity
//
// A factory is keyed by ir.ScriptKey, which covers the script, its target
// and the signatures of the procedures it can call. Lookups also match the
// compiler version, so upgrading the compiler invalidates every entry
// without a migration.
//
// # Deterministic Query Results
//
// All list queries order by seq, then by key with COLLATE BINARY, so two
// runs over the same database print identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Factories and failures must name an existing build
package store
