package extract

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/symdex-mcp/internal/compiledb"
	"github.com/dshills/symdex-mcp/internal/vfs"
)

func TestExtractProducesShardPerFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/pkg/a.go",
		[]byte("package pkg\n\nfunc Alpha() {}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/pkg/b.go",
		[]byte("package pkg\n\nfunc Beta() { Alpha() }\n"), 0o644))

	e := NewGoExtractor(vfs.NewFromFs(fs))
	result, err := e.Extract(context.Background(), compiledb.CompileCommand{
		Directory: "/proj/pkg",
		Filename:  "/proj/pkg/a.go",
		Files:     []string{"/proj/pkg/a.go", "/proj/pkg/b.go"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.HadErrors)
	require.Len(t, result.Shards, 2)

	a := result.Shards["/proj/pkg/a.go"]
	require.NotNil(t, a)
	assert.False(t, a.Digest.IsZero())
	assert.Equal(t, []string{"/proj/pkg/b.go"}, a.Deps)
	require.Len(t, a.Symbols, 1)
	assert.Equal(t, "Alpha", a.Symbols[0].Name)

	b := result.Shards["/proj/pkg/b.go"]
	require.NotNil(t, b)
	assert.Equal(t, []string{"/proj/pkg/a.go"}, b.Deps)
}

func TestExtractTagsErrorsButKeepsPartialResult(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/pkg/ok.go",
		[]byte("package pkg\n\nfunc OK() {}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/pkg/broken.go",
		[]byte("package pkg\n\nfunc Broken( {\n"), 0o644))

	e := NewGoExtractor(vfs.NewFromFs(fs))
	result, err := e.Extract(context.Background(), compiledb.CompileCommand{
		Filename: "/proj/pkg/ok.go",
		Files:    []string{"/proj/pkg/ok.go", "/proj/pkg/broken.go"},
	})
	require.NoError(t, err)

	assert.True(t, result.HadErrors)
	require.NotNil(t, result.Shards["/proj/pkg/ok.go"])
	assert.False(t, result.Shards["/proj/pkg/ok.go"].HadErrors)
	require.NotNil(t, result.Shards["/proj/pkg/broken.go"])
	assert.True(t, result.Shards["/proj/pkg/broken.go"].HadErrors)
}

func TestExtractMissingFileYieldsPartialResult(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/pkg/ok.go",
		[]byte("package pkg\n\nfunc OK() {}\n"), 0o644))

	e := NewGoExtractor(vfs.NewFromFs(fs))
	result, err := e.Extract(context.Background(), compiledb.CompileCommand{
		Filename: "/proj/pkg/ok.go",
		Files:    []string{"/proj/pkg/ok.go", "/proj/pkg/gone.go"},
	})
	require.NoError(t, err)

	assert.True(t, result.HadErrors)
	assert.Len(t, result.Shards, 1)
}
