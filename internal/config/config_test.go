package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/symdex-mcp/internal/storage"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvStorage, "")
	t.Setenv(EnvRebuildBatch, "")
	t.Setenv(EnvRebuildInterval, "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Root, "root should default to the working directory")
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, storage.BackendDisk, cfg.Storage)
	assert.Equal(t, 0, cfg.RebuildBatch)
	assert.Equal(t, time.Duration(0), cfg.RebuildInterval)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvRoot, "/srv/project")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvStorage, "sqlite")
	t.Setenv(EnvRebuildBatch, "25")
	t.Setenv(EnvRebuildInterval, "1500")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/srv/project", cfg.Root)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, storage.BackendSQLite, cfg.Storage)
	assert.Equal(t, 25, cfg.RebuildBatch)
	assert.Equal(t, 1500*time.Millisecond, cfg.RebuildInterval)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric workers", EnvWorkers, "many"},
		{"negative workers", EnvWorkers, "-2"},
		{"unknown backend", EnvStorage, "redis"},
		{"non-numeric batch", EnvRebuildBatch, "big"},
		{"negative interval", EnvRebuildInterval, "-100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
