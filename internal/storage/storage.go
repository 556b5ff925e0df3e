package storage

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dshills/symdex-mcp/pkg/types"
)

var (
	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")
)

// Store persists per-file index shards, keyed by shard identifier - in
// practice the absolute path of the source file. Both operations must be safe
// under arbitrary concurrent calls, including concurrent store and load of
// the same identifier; last store wins.
type Store interface {
	// StoreShard persists one shard under id. An empty id is rejected
	// with types.ErrMissingPath.
	StoreShard(ctx context.Context, id string, shard *types.FileShard) error

	// LoadShard returns the shard stored under id, or (nil, nil) when no
	// shard exists. Absence is not an error: a never-indexed file and a
	// missing or corrupted shard both simply force re-extraction.
	LoadShard(ctx context.Context, id string) (*types.FileShard, error)
}

// Factory maps a project root to a Store. Implementations cache instances
// per root, are safe for concurrent use, and never yield an absent store.
type Factory func(projectRoot string) Store

// Backend selects a shard store implementation
type Backend string

const (
	BackendDisk   Backend = "disk"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// NewFactory builds a caching factory for the given backend. Roots whose
// backend cannot be initialized fall back to an in-memory store, so the
// factory never returns nil; the shards for that root are simply not
// persisted across restarts.
func NewFactory(backend Backend) Factory {
	var (
		mu     sync.Mutex
		stores = make(map[string]Store)
	)

	create := func(root string) Store {
		switch backend {
		case BackendSQLite:
			s, err := NewSQLiteStore(root)
			if err != nil {
				log.Printf("storage: sqlite store for %s unavailable, using memory: %v", root, err)
				return NewMemoryStore()
			}
			return s
		case BackendMemory:
			return NewMemoryStore()
		default:
			s, err := NewDiskStore(root)
			if err != nil {
				log.Printf("storage: disk store for %s unavailable, using memory: %v", root, err)
				return NewMemoryStore()
			}
			return s
		}
	}

	return func(projectRoot string) Store {
		mu.Lock()
		defer mu.Unlock()
		if s, ok := stores[projectRoot]; ok {
			return s
		}
		s := create(projectRoot)
		stores[projectRoot] = s
		return s
	}
}
