package compiledb

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/symdex-mcp/internal/vfs"
)

func newTestDB(t *testing.T) (*PackageDB, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/proj/pkga", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/proj/pkga/a.go", []byte("package pkga\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/pkga/b.go", []byte("package pkga\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/pkga/notes.txt", []byte("x"), 0o644))
	return NewPackageDB("/proj", vfs.NewFromFs(fs)), fs
}

func TestCompileCommandListsPackageFiles(t *testing.T) {
	db, _ := newTestDB(t)

	cmd, ok := db.CompileCommand("/proj/pkga/a.go")
	require.True(t, ok)
	assert.Equal(t, "/proj/pkga/a.go", cmd.Filename)
	assert.Equal(t, "/proj/pkga", cmd.Directory)
	assert.Equal(t, []string{"/proj/pkga/a.go", "/proj/pkga/b.go"}, cmd.Files)
}

func TestCompileCommandRejectsForeignPaths(t *testing.T) {
	db, _ := newTestDB(t)

	_, ok := db.CompileCommand("/elsewhere/main.go")
	assert.False(t, ok)

	_, ok = db.CompileCommand("/proj/pkga/notes.txt")
	assert.False(t, ok)
}

func TestSubscribeAndNotify(t *testing.T) {
	db, _ := newTestDB(t)

	var got [][]string
	unsub := db.Subscribe(func(changed []string) {
		got = append(got, changed)
	})

	db.Notify([]string{"/proj/pkga/a.go"})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"/proj/pkga/a.go"}, got[0])

	unsub()
	db.Notify([]string{"/proj/pkga/b.go"})
	assert.Len(t, got, 1)
}
