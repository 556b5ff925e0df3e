package index

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/symdex-mcp/pkg/types"
)

// Snapshot is an immutable aggregation of shards across all indexed files,
// safe for concurrent reads. Snapshots are replaced, never mutated; readers
// keep serving from the snapshot they hold until they next load.
type Snapshot struct {
	generation uint64
	symbols    []types.Symbol // sorted by name for deterministic output
	byName     map[string][]types.Symbol
	refsByName map[string][]types.Reference
	fileCount  int
}

// Generation returns the snapshot's monotonically increasing rebuild number
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Lookup returns all symbols with exactly the given name
func (s *Snapshot) Lookup(name string) []types.Symbol {
	return s.byName[name]
}

// References returns all recorded references to the given symbol name
func (s *Snapshot) References(name string) []types.Reference {
	return s.refsByName[name]
}

// FuzzyFind returns up to limit symbols whose name matches query by exact,
// prefix, or substring match, best matches first. The match is
// case-insensitive.
func (s *Snapshot) FuzzyFind(query string, limit int) []types.Symbol {
	if query == "" || limit <= 0 {
		return nil
	}
	q := strings.ToLower(query)

	type scored struct {
		sym   types.Symbol
		score float64
	}
	var matches []scored
	for _, sym := range s.symbols {
		name := strings.ToLower(sym.Name)
		var score float64
		switch {
		case name == q:
			score = 1.0
		case strings.HasPrefix(name, q):
			score = 0.8
		case strings.Contains(name, q):
			score = 0.5
		default:
			continue
		}
		// Shorter names are closer matches at equal tier.
		score -= float64(len(name)-len(q)) * 0.001
		matches = append(matches, scored{sym, score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]types.Symbol, len(matches))
	for i, m := range matches {
		out[i] = m.sym
	}
	return out
}

// SymbolCount returns the number of indexed symbols
func (s *Snapshot) SymbolCount() int {
	return len(s.symbols)
}

// FileCount returns the number of files contributing shards
func (s *Snapshot) FileCount() int {
	return s.fileCount
}

// fileShards is the mutable source of truth the published snapshot is built
// from: the latest merged shard per file, under its own lock.
type fileShards struct {
	mu     sync.Mutex
	shards map[string]*types.FileShard
}

func newFileShards() *fileShards {
	return &fileShards{shards: make(map[string]*types.FileShard)}
}

// update replaces the shard for one file
func (f *fileShards) update(path string, shard *types.FileShard) {
	f.mu.Lock()
	f.shards[path] = shard
	f.mu.Unlock()
}

// buildSnapshot aggregates the current shard set into an immutable snapshot
func (f *fileShards) buildSnapshot(generation uint64) *Snapshot {
	f.mu.Lock()
	shards := make([]*types.FileShard, 0, len(f.shards))
	for _, shard := range f.shards {
		shards = append(shards, shard)
	}
	f.mu.Unlock()

	snap := &Snapshot{
		generation: generation,
		byName:     make(map[string][]types.Symbol),
		refsByName: make(map[string][]types.Reference),
		fileCount:  len(shards),
	}
	for _, shard := range shards {
		snap.symbols = append(snap.symbols, shard.Symbols...)
		for _, ref := range shard.Refs {
			snap.refsByName[ref.Name] = append(snap.refsByName[ref.Name], ref)
		}
	}
	sort.Slice(snap.symbols, func(i, j int) bool {
		if snap.symbols[i].Name != snap.symbols[j].Name {
			return snap.symbols[i].Name < snap.symbols[j].Name
		}
		return snap.symbols[i].File < snap.symbols[j].File
	})
	for _, sym := range snap.symbols {
		snap.byName[sym.Name] = append(snap.byName[sym.Name], sym)
	}
	return snap
}

// SwapIndex publishes snapshots behind a single atomically replaceable
// pointer. Readers never block on an in-progress rebuild; they see the
// previous snapshot until the new one is swapped in.
type SwapIndex struct {
	p atomic.Pointer[Snapshot]
}

// NewSwapIndex creates a SwapIndex serving an empty snapshot
func NewSwapIndex() *SwapIndex {
	s := &SwapIndex{}
	s.p.Store(&Snapshot{
		byName:     make(map[string][]types.Symbol),
		refsByName: make(map[string][]types.Reference),
	})
	return s
}

// Load returns the current snapshot; never nil
func (s *SwapIndex) Load() *Snapshot {
	return s.p.Load()
}

// swap publishes a new snapshot
func (s *SwapIndex) swap(next *Snapshot) {
	s.p.Store(next)
}
