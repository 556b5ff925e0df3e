package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/symdex-mcp/pkg/types"
)

// IndexDirName is the hidden per-project directory shards live under
const IndexDirName = ".symdex/index"

// DiskStore is the default shard backend: one JSON file per shard under
// <root>/.symdex/index/. Writes go through a temp file plus rename so
// concurrent stores of the same identifier resolve to last-write-wins without
// readers ever seeing a torn shard.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk store rooted under projectRoot
func NewDiskStore(projectRoot string) (*DiskStore, error) {
	dir := filepath.Join(projectRoot, IndexDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// shardPath flattens an identifier to a filename. Identifiers are absolute
// paths, so they are digested to stay within filename length limits.
func (s *DiskStore) shardPath(id string) string {
	return filepath.Join(s.dir, types.DigestOf([]byte(id)).String()+".shard")
}

// StoreShard persists one shard
func (s *DiskStore) StoreShard(ctx context.Context, id string, shard *types.FileShard) error {
	if id == "" {
		return types.ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(shard)
	if err != nil {
		return fmt.Errorf("failed to encode shard: %w", err)
	}

	target := s.shardPath(id)
	tmp, err := os.CreateTemp(s.dir, "shard-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp shard: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write shard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close shard: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish shard: %w", err)
	}
	return nil
}

// LoadShard returns the stored shard or (nil, nil) when absent or unreadable
func (s *DiskStore) LoadShard(ctx context.Context, id string) (*types.FileShard, error) {
	if id == "" {
		return nil, types.ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.shardPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read shard: %w", err)
	}

	var shard types.FileShard
	if err := json.Unmarshal(data, &shard); err != nil {
		// A corrupted shard is indistinguishable from a missing one; both
		// force re-extraction.
		return nil, nil
	}
	return &shard, nil
}
