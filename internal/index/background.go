package index

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/symdex-mcp/internal/compiledb"
	"github.com/dshills/symdex-mcp/internal/extract"
	"github.com/dshills/symdex-mcp/internal/queue"
	"github.com/dshills/symdex-mcp/internal/storage"
	"github.com/dshills/symdex-mcp/internal/vfs"
	"github.com/dshills/symdex-mcp/pkg/types"
)

// Queue priorities, from lowest to highest. Loading shards for a burst of
// changed files always outranks extraction so the dependency graph resolves
// before expensive work is committed to.
const (
	priIndexFile = iota
	priLoadShards
)

// ShardVersion is the last known state under which a file was indexed.
// Entries are mutated only while holding the version table's lock.
type ShardVersion struct {
	Digest    types.Digest
	HadErrors bool
}

// Options configures a BackgroundIndex
type Options struct {
	Workers         int
	RebuildBatch    int
	RebuildInterval time.Duration
}

// BackgroundIndex builds and maintains the symbol index in the background.
// Changed-file notifications become scheduled extraction tasks; results merge
// into an atomically published snapshot, and per-file shards persist across
// restarts through the storage factory.
type BackgroundIndex struct {
	fs        vfs.Provider
	cdb       compiledb.Database
	extractor extract.Extractor
	factory   storage.Factory

	queue     *queue.Queue
	shards    *fileShards
	published *SwapIndex
	rebuilder *Rebuilder

	mu            sync.Mutex // guards shardVersions
	shardVersions map[string]ShardVersion

	workers     sync.WaitGroup
	unsubscribe func()
	stopOnce    sync.Once
}

// cmdStorage pairs a compile command with its resolved shard store
type cmdStorage struct {
	cmd   compiledb.CompileCommand
	store storage.Store
}

// New creates a BackgroundIndex and starts its worker pool. It subscribes to
// the compilation database's change notifications; Stop must be called to
// release the workers.
func New(fs vfs.Provider, cdb compiledb.Database, extractor extract.Extractor, factory storage.Factory, opts Options) *BackgroundIndex {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	b := &BackgroundIndex{
		fs:            fs,
		cdb:           cdb,
		extractor:     extractor,
		factory:       factory,
		queue:         queue.New(),
		shards:        newFileShards(),
		published:     NewSwapIndex(),
		shardVersions: make(map[string]ShardVersion),
	}
	b.rebuilder = NewRebuilder(b.shards, b.published, opts.RebuildBatch, opts.RebuildInterval)

	for i := 0; i < opts.Workers; i++ {
		b.workers.Add(1)
		go func() {
			defer b.workers.Done()
			b.queue.Work(b.rebuilder.Idle)
		}()
	}

	b.unsubscribe = cdb.Subscribe(b.Enqueue)
	return b
}

// Index returns the published snapshot index for queries
func (b *BackgroundIndex) Index() *SwapIndex {
	return b.published
}

// QueueStats returns scheduler counters for status reporting
func (b *BackgroundIndex) QueueStats() queue.Stats {
	return b.queue.Stats()
}

// Enqueue schedules indexing for the given changed files. The shard-loading
// step runs at high priority so newly changed files are never starved behind
// a backlog of extraction tasks. Never blocks the caller.
func (b *BackgroundIndex) Enqueue(changedFiles []string) {
	files := make([]string, len(changedFiles))
	copy(files, changedFiles)
	b.queue.Push(queue.Task{
		Run:      func() { b.changedFiles(files) },
		QueuePri: priLoadShards,
	})
}

// Stop drains the pool and publishes any pending merges. Currently running
// tasks complete; queued tasks are discarded. Safe to call more than once.
func (b *BackgroundIndex) Stop() {
	b.stopOnce.Do(func() {
		b.unsubscribe()
		b.queue.Stop()
		b.workers.Wait()
		// Workers are gone, so the flush below races with nothing.
		b.rebuilder.Shutdown()
	})
}

// BlockUntilIdleForTest waits until the queue is empty and no task is
// executing, for deterministic testing only.
func (b *BackgroundIndex) BlockUntilIdleForTest(timeout time.Duration) bool {
	return b.queue.BlockUntilIdleForTest(timeout)
}

// changedFiles is the high-priority task body: resolve which translation
// units actually need re-extraction and schedule an index task per unit.
func (b *BackgroundIndex) changedFiles(files []string) {
	needsReindexing := b.loadShards(files)

	tasks := make([]queue.Task, 0, len(needsReindexing))
	for _, cs := range needsReindexing {
		tasks = append(tasks, queue.Task{
			Run: func() {
				if err := b.index(cs.cmd, cs.store); err != nil {
					log.Printf("index: failed to index %s: %v", cs.cmd.Filename, err)
				}
			},
			QueuePri: priIndexFile,
		})
	}
	b.queue.Append(tasks)
}

// loadShards loads the stored shards relevant to the changed files and
// returns the units needing re-extraction. Units are deduplicated within the
// batch, so at most one extraction task per TU is scheduled per enqueue.
func (b *BackgroundIndex) loadShards(changedFiles []string) []cmdStorage {
	loaded := make(map[string]bool) // shard ids visited this batch
	seenTU := make(map[string]bool)
	var out []cmdStorage

	adopted := 0
	for _, file := range changedFiles {
		cmd, ok := b.cdb.CompileCommand(file)
		if !ok {
			log.Printf("index: no compile command for %s, skipping", file)
			continue
		}
		// One unit per package directory; at most one extraction task per
		// unit is scheduled from a single batch.
		if seenTU[cmd.Directory] {
			continue
		}
		seenTU[cmd.Directory] = true

		store := b.factory(b.cdb.ProjectRoot())
		sources, n := b.loadShard(*cmd, store, loaded)
		adopted += n

		needs := false
		for _, src := range sources {
			if src.needsReindexing {
				needs = true
				break
			}
		}
		if needs {
			out = append(out, cmdStorage{cmd: *cmd, store: store})
		}
	}

	if adopted > 0 {
		b.rebuilder.MarkUpdated(adopted)
	}
	return out
}

// source is one file of a unit and whether its shard is stale
type source struct {
	path            string
	needsReindexing bool
}

// loadShard loads the stored shards for one unit and its dependencies,
// walking dependency lists recorded in the shards with a visited set so a
// shard already loaded in this batch is not reloaded. Valid shards are
// adopted into the live index; returns the sources plus how many shards were
// adopted.
func (b *BackgroundIndex) loadShard(cmd compiledb.CompileCommand, store storage.Store, loaded map[string]bool) ([]source, int) {
	ctx := context.Background()
	var srcs []source
	adopted := 0

	pending := []string{cmd.Filename}
	for len(pending) > 0 {
		path := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if loaded[path] {
			continue
		}
		loaded[path] = true

		shard, err := store.LoadShard(ctx, path)
		if err != nil {
			// Storage failure reads as "no shard": forces re-extraction.
			log.Printf("index: failed to load shard for %s: %v", path, err)
			shard = nil
		}

		digest, derr := b.fs.Digest(path)
		current := shard != nil && derr == nil && shard.Digest == digest

		if current {
			// Stale-but-stored symbols beat none: adopt the shard now, and
			// leave error-tagged files marked for re-extraction so a later
			// pass can clear the error state.
			b.mu.Lock()
			b.shardVersions[path] = ShardVersion{Digest: shard.Digest, HadErrors: shard.HadErrors}
			b.mu.Unlock()
			b.shards.update(path, shard)
			adopted++
			pending = append(pending, shard.Deps...)
		}

		srcs = append(srcs, source{
			path:            path,
			needsReindexing: !current || shard.HadErrors,
		})
	}
	return srcs, adopted
}

// index extracts one unit and merges the result
func (b *BackgroundIndex) index(cmd compiledb.CompileCommand, store storage.Store) error {
	// Snapshot the version table so the expensive extraction runs unlocked.
	b.mu.Lock()
	snapshot := make(map[string]ShardVersion, len(b.shardVersions))
	for k, v := range b.shardVersions {
		snapshot[k] = v
	}
	b.mu.Unlock()

	result, err := b.extractor.Extract(context.Background(), cmd)
	if result == nil {
		return err
	}
	hadErrors := result.HadErrors || err != nil

	b.update(cmd.Filename, result, snapshot, store, hadErrors)
	return err
}

// update merges an extraction result: for every touched file, skip it when
// its digest and error state are unchanged since the last merge (its shard is
// already current and must not be rewritten); otherwise record the new
// version, persist the shard, and stage it for the next snapshot rebuild.
// Error-state transitions force a re-merge even under an unchanged digest, so
// an error never freezes into the index permanently.
func (b *BackgroundIndex) update(mainFile string, result *types.ExtractionResult, snapshot map[string]ShardVersion, store storage.Store, hadErrors bool) {
	ctx := context.Background()
	staged := 0

	for path, shard := range result.Shards {
		if sv, ok := snapshot[path]; ok && sv.Digest == shard.Digest && sv.HadErrors == hadErrors {
			continue
		}

		// Re-check against the live table under its lock: another unit may
		// have merged this file since the snapshot was taken, and the
		// compare-and-skip must be atomic per file.
		b.mu.Lock()
		if sv, ok := b.shardVersions[path]; ok && sv.Digest == shard.Digest && sv.HadErrors == hadErrors {
			b.mu.Unlock()
			continue
		}
		b.shardVersions[path] = ShardVersion{Digest: shard.Digest, HadErrors: hadErrors}
		b.mu.Unlock()

		merged := *shard
		merged.HadErrors = hadErrors

		// A failed store is a dropped write: the next relevant change
		// notification retries naturally.
		if err := store.StoreShard(ctx, path, &merged); err != nil {
			log.Printf("index: failed to store shard for %s (unit %s): %v", path, mainFile, err)
		}

		b.shards.update(path, &merged)
		staged++
	}

	if staged > 0 {
		b.rebuilder.MarkUpdated(staged)
	}
}
