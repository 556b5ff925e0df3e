// Package index implements the background symbol indexing engine.
//
// BackgroundIndex turns "these files changed" notifications into scheduled
// extraction work on a bounded worker pool, keeps an always-queryable
// in-memory snapshot fresh, and persists per-file shards so unchanged files
// are never re-extracted across restarts.
//
// # Pipeline
//
// An Enqueue call schedules a high-priority shard-loading task. That task
// resolves, per translation unit touching the changed files, which sources
// actually need re-extraction: stored shards are loaded (recursively over
// recorded dependencies, deduplicated within the batch) and their digests
// compared against current file content. Units with at least one stale
// source get a lower-priority extraction task.
//
// Extraction runs unlocked on a worker. Its result is merged file by file:
// a file whose digest and error state are unchanged since the last merge is
// provably current and skipped; everything else updates the shard version
// table, persists through the shard store, and is staged for publication.
//
// # Publication
//
// The queryable Snapshot is immutable and swapped atomically. The Rebuilder
// batches staged updates and republished snapshots on a count threshold or
// wall-clock interval, whichever comes first, plus a flush when the queue
// drains and a final flush on shutdown. Readers never block on a rebuild.
//
// # Deduplication Invariant
//
// The shard version table and the shard store never disagree about what was
// last indexed: version entries are written under the table's lock in the
// same merge step that writes the store. An error-tagged file remains
// eligible for re-merge even when its digest is unchanged; pure
// digest-equality dedup would freeze error states permanently.
package index
