package index

import (
	"sync"
	"time"
)

// Rebuild policy defaults. Rebuilding the queryable structure is much more
// expensive than merging one shard, so merges are batched and the snapshot is
// republished when either limit is hit.
const (
	DefaultRebuildBatch    = 10
	DefaultRebuildInterval = 30 * time.Second
)

// Rebuilder decouples "a shard changed" from "the queryable snapshot is
// republished". Merged-but-unpublished updates accumulate until either the
// batch threshold is reached or the interval since the last rebuild has
// elapsed; shutdown flushes whatever is pending into one final rebuild.
type Rebuilder struct {
	source *fileShards
	target *SwapIndex

	mu         sync.Mutex
	dirty      int // merges since the last rebuild
	rebuilding bool
	lastBuild  time.Time
	generation uint64
	shutdown   bool

	batch    int
	interval time.Duration
}

// NewRebuilder creates a coordinator publishing from source into target
func NewRebuilder(source *fileShards, target *SwapIndex, batch int, interval time.Duration) *Rebuilder {
	if batch <= 0 {
		batch = DefaultRebuildBatch
	}
	if interval <= 0 {
		interval = DefaultRebuildInterval
	}
	return &Rebuilder{
		source:    source,
		target:    target,
		lastBuild: time.Now(),
		batch:     batch,
		interval:  interval,
	}
}

// MarkUpdated records n merged shard updates and rebuilds if a threshold was
// crossed. Called by workers after merging; the rebuild, when triggered, runs
// on the calling worker outside the lock.
func (r *Rebuilder) MarkUpdated(n int) {
	r.mu.Lock()
	r.dirty += n
	due := !r.shutdown && !r.rebuilding &&
		(r.dirty >= r.batch || time.Since(r.lastBuild) >= r.interval)
	if due {
		r.rebuilding = true
	}
	r.mu.Unlock()

	if due {
		r.rebuild()
	}
}

// Idle flushes pending updates when the queue drains, so a small batch does
// not sit unpublished waiting for its threshold.
func (r *Rebuilder) Idle() {
	r.mu.Lock()
	due := !r.shutdown && !r.rebuilding && r.dirty > 0
	if due {
		r.rebuilding = true
	}
	r.mu.Unlock()

	if due {
		r.rebuild()
	}
}

// Shutdown flushes any pending batch into one final rebuild and stops
// accepting further rebuilds. No merged shard is left unpublished.
func (r *Rebuilder) Shutdown() {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return
	}
	r.shutdown = true
	final := r.dirty > 0 && !r.rebuilding
	if final {
		r.rebuilding = true
	}
	r.mu.Unlock()

	if final {
		r.rebuild()
	}
}

// rebuild aggregates the shard set and swaps the published snapshot. The
// caller must have set r.rebuilding under the lock.
func (r *Rebuilder) rebuild() {
	r.mu.Lock()
	r.dirty = 0
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	snap := r.source.buildSnapshot(gen)
	r.target.swap(snap)

	r.mu.Lock()
	r.rebuilding = false
	r.lastBuild = time.Now()
	r.mu.Unlock()
}

// Generation reports how many rebuilds have been published
func (r *Rebuilder) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Pending reports merges not yet published
func (r *Rebuilder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}
