package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dshills/symdex-mcp/internal/storage"
)

// Environment variable names
const (
	EnvRoot            = "SYMDEX_ROOT"
	EnvWorkers         = "SYMDEX_WORKERS"
	EnvStorage         = "SYMDEX_STORAGE"
	EnvRebuildBatch    = "SYMDEX_REBUILD_BATCH"
	EnvRebuildInterval = "SYMDEX_REBUILD_INTERVAL_MS"
)

// Config holds the server configuration resolved from the environment.
type Config struct {
	// Root is the project directory to serve. Defaults to the working
	// directory.
	Root string

	// Workers is the background worker count. Zero means one per CPU.
	Workers int

	// Storage selects the shard persistence backend.
	Storage storage.Backend

	// RebuildBatch is the number of merged shard updates that triggers a
	// snapshot rebuild. Zero selects the built-in default.
	RebuildBatch int

	// RebuildInterval is the wall-clock bound on snapshot staleness.
	// Zero selects the built-in default.
	RebuildInterval time.Duration
}

// FromEnv resolves the configuration from environment variables,
// falling back to defaults for anything unset.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Storage: storage.BackendDisk,
	}

	cfg.Root = os.Getenv(EnvRoot)
	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.Root = wd
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvWorkers, v)
		}
		cfg.Workers = n
	}

	if v := os.Getenv(EnvStorage); v != "" {
		switch storage.Backend(v) {
		case storage.BackendDisk, storage.BackendSQLite, storage.BackendMemory:
			cfg.Storage = storage.Backend(v)
		default:
			return nil, fmt.Errorf("invalid %s: %q (want disk, sqlite, or memory)", EnvStorage, v)
		}
	}

	if v := os.Getenv(EnvRebuildBatch); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvRebuildBatch, v)
		}
		cfg.RebuildBatch = n
	}

	if v := os.Getenv(EnvRebuildInterval); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvRebuildInterval, v)
		}
		cfg.RebuildInterval = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}
