package storage

import (
	"context"
	"sync"

	"github.com/dshills/symdex-mcp/pkg/types"
)

// MemoryStore keeps shards in a map. Used by tests and as the factory's
// fallback when a persistent backend cannot be initialized.
type MemoryStore struct {
	mu     sync.RWMutex
	shards map[string]*types.FileShard
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shards: make(map[string]*types.FileShard),
	}
}

// StoreShard persists one shard
func (s *MemoryStore) StoreShard(ctx context.Context, id string, shard *types.FileShard) error {
	if id == "" {
		return types.ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *shard
	s.mu.Lock()
	s.shards[id] = &cp
	s.mu.Unlock()
	return nil
}

// LoadShard returns the stored shard or (nil, nil) when absent
func (s *MemoryStore) LoadShard(ctx context.Context, id string) (*types.FileShard, error) {
	if id == "" {
		return nil, types.ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	shard, ok := s.shards[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	cp := *shard
	return &cp, nil
}

// Len reports the number of stored shards
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shards)
}
