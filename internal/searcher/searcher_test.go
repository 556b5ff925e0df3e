package searcher

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/symdex-mcp/internal/compiledb"
	"github.com/dshills/symdex-mcp/internal/extract"
	"github.com/dshills/symdex-mcp/internal/index"
	"github.com/dshills/symdex-mcp/internal/storage"
	"github.com/dshills/symdex-mcp/internal/vfs"
	"github.com/dshills/symdex-mcp/pkg/types"
)

const authSource = `package auth

// Login authenticates a user
func Login() {}

// LoginAttempt records one login try
type LoginAttempt struct{}

func logout() { Login() }
`

func newIndexed(t *testing.T) (*index.BackgroundIndex, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/proj/auth", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/proj/auth/auth.go", []byte(authSource), 0o644))

	provider := vfs.NewFromFs(fs)
	cdb := compiledb.NewPackageDB("/proj", provider)
	idx := index.New(provider, cdb, extract.NewGoExtractor(provider),
		storage.NewFactory(storage.BackendMemory), index.Options{Workers: 2})
	t.Cleanup(idx.Stop)

	idx.Enqueue([]string{"/proj/auth/auth.go"})
	require.True(t, idx.BlockUntilIdleForTest(10*time.Second))
	return idx, fs
}

func TestSearchExact(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	resp, err := srch.Search(SearchRequest{Query: "Login", Exact: true})
	require.NoError(t, err)
	require.Len(t, resp.Symbols, 1)
	assert.Equal(t, types.KindFunction, resp.Symbols[0].Kind)
	assert.False(t, resp.CacheHit)
}

func TestSearchFuzzyRanking(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	resp, err := srch.Search(SearchRequest{Query: "login", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Symbols)
	assert.Equal(t, "Login", resp.Symbols[0].Name)
}

func TestSearchFuzzyCaseInsensitive(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	resp, err := srch.Search(SearchRequest{Query: "Logout"})
	require.NoError(t, err)
	require.Len(t, resp.Symbols, 1)
	assert.Equal(t, "logout", resp.Symbols[0].Name)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	_, err := srch.Search(SearchRequest{})
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestSearchRejectsNegativeLimit(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	_, err := srch.Search(SearchRequest{Query: "Login", Limit: -1})
	assert.ErrorIs(t, err, types.ErrInvalidLimit)
}

func TestSearchCacheHit(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	req := SearchRequest{Query: "Login", UseCache: true}
	first, err := srch.Search(req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := srch.Search(req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Symbols, second.Symbols)
}

func TestSearchCacheInvalidatedByRebuild(t *testing.T) {
	idx, fs := newIndexed(t)
	srch := NewSearcher(idx.Index())

	// Matching is case-insensitive, so the query must not collide with
	// the fixture's logout helper.
	req := SearchRequest{Query: "Signout", UseCache: true}
	first, err := srch.Search(req)
	require.NoError(t, err)
	assert.Empty(t, first.Symbols)

	// New content, new snapshot generation, cache key misses.
	require.NoError(t, afero.WriteFile(fs, "/proj/auth/auth.go",
		[]byte(authSource+"\nfunc Signout() {}\n"), 0o644))
	idx.Enqueue([]string{"/proj/auth/auth.go"})
	require.True(t, idx.BlockUntilIdleForTest(10*time.Second))

	second, err := srch.Search(req)
	require.NoError(t, err)
	assert.False(t, second.CacheHit)
	assert.Len(t, second.Symbols, 1)
}

func TestReferences(t *testing.T) {
	idx, _ := newIndexed(t)
	srch := NewSearcher(idx.Index())

	refs, err := srch.References("Login")
	require.NoError(t, err)

	var defs, uses int
	for _, ref := range refs {
		switch ref.Kind {
		case types.RefDefinition:
			defs++
		case types.RefUse:
			uses++
		}
	}
	assert.Equal(t, 1, defs)
	assert.Equal(t, 1, uses)
}
