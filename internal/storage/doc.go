// Package storage handles persistence of per-file index shards.
//
// Shards are stored and retrieved independently, keyed by shard identifier -
// in practice the absolute path of a source file. All backends tolerate
// arbitrary concurrent access; concurrent stores of the same identifier
// resolve to last-write-wins.
//
// # Backends
//
// Three implementations satisfy the Store interface:
//
//   - DiskStore (default): one JSON file per shard under
//     <root>/.symdex/index/, published atomically via rename
//   - SQLiteStore: a single shards table per project, upsert semantics,
//     WAL journal, single-writer pool
//   - MemoryStore: for tests, and the fallback when a persistent backend
//     cannot be initialized
//
// # Factory
//
// A Factory maps a project root to its store, constructing backends lazily
// and memoizing them per root:
//
//	factory := storage.NewFactory(storage.BackendDisk)
//	store := factory("/path/to/project") // cached on later calls
//
// The factory never yields an absent store: initialization failures degrade
// to an in-memory store, which costs re-extraction after a restart but never
// blocks indexing.
//
// # Absence Semantics
//
// LoadShard returns (nil, nil) for a missing shard. A never-indexed file and
// a corrupted shard are deliberately indistinguishable; both force
// re-extraction, which is always safe.
//
// # Build Modes
//
// The SQLite backend compiles against either driver, selected by build tags
// (see build_cgo.go and build_purego.go). Pure Go is the default so the
// module builds without a C toolchain.
package storage
