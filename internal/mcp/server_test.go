package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/symdex-mcp/internal/config"
	"github.com/dshills/symdex-mcp/internal/queue"
	"github.com/dshills/symdex-mcp/internal/storage"
)

func init() {
	queue.PreventThreadStarvationInTests()
}

const greeterSource = `package greeter

// Greeter says hello.
type Greeter struct {
	Name string
}

// Greet returns a greeting for the receiver's name.
func (g *Greeter) Greet() string {
	return "hello, " + g.Name
}

func NewGreeter(name string) *Greeter {
	return &Greeter{Name: name}
}
`

// newTestServer builds a server over a real temp project with one
// indexed package.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	file := filepath.Join(root, "greeter.go")
	require.NoError(t, os.WriteFile(file, []byte(greeterSource), 0644))

	srv, err := NewServer(&config.Config{
		Root:    root,
		Workers: 2,
		Storage: storage.BackendMemory,
	})
	require.NoError(t, err)
	t.Cleanup(srv.index.Stop)

	return srv, file
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultJSON decodes the text payload of a tool result.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result should be text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServerRejectsBadRoot(t *testing.T) {
	_, err := NewServer(&config.Config{Root: "relative/path", Storage: storage.BackendMemory})
	assert.ErrorIs(t, err, ErrPathNotAbsolute)

	_, err = NewServer(&config.Config{Root: "/does/not/exist", Storage: storage.BackendMemory})
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestEnqueueFilesSchedulesIndexing(t *testing.T) {
	srv, file := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleEnqueueFiles(ctx, callRequest("enqueue_files", map[string]interface{}{
		"files": []interface{}{file},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["enqueued"])

	require.True(t, srv.index.BlockUntilIdleForTest(5*time.Second))

	status, err := srv.handleIndexStatus(ctx, callRequest("index_status", nil))
	require.NoError(t, err)

	decoded := resultJSON(t, status)
	assert.Equal(t, true, decoded["idle"])
	assert.Equal(t, float64(1), decoded["files"])
	assert.Greater(t, decoded["symbols"], float64(0))
}

func TestEnqueueFilesValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing files", map[string]interface{}{}},
		{"empty files", map[string]interface{}{"files": []interface{}{}}},
		{"non-string entry", map[string]interface{}{"files": []interface{}{42}}},
		{"relative path", map[string]interface{}{"files": []interface{}{"rel/a.go"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.handleEnqueueFiles(ctx, callRequest("enqueue_files", tc.args))
			require.Error(t, err)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestLookupSymbolReturnsIndexedSymbol(t *testing.T) {
	srv, file := newTestServer(t)
	ctx := context.Background()

	srv.cdb.Notify([]string{file})
	require.True(t, srv.index.BlockUntilIdleForTest(5*time.Second))

	result, err := srv.handleLookupSymbol(ctx, callRequest("lookup_symbol", map[string]interface{}{
		"name": "NewGreeter",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(1), response["count"])

	symbols := response["symbols"].([]interface{})
	sym := symbols[0].(map[string]interface{})
	assert.Equal(t, "NewGreeter", sym["name"])
	assert.Equal(t, "function", sym["kind"])
	assert.Equal(t, file, sym["file"])
}

func TestSearchSymbolsFuzzyAndCache(t *testing.T) {
	srv, file := newTestServer(t)
	ctx := context.Background()

	srv.cdb.Notify([]string{file})
	require.True(t, srv.index.BlockUntilIdleForTest(5*time.Second))

	args := map[string]interface{}{"query": "Greet", "limit": float64(10)}

	first, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", args))
	require.NoError(t, err)
	firstResp := resultJSON(t, first)
	assert.Equal(t, false, firstResp["cache_hit"])
	assert.GreaterOrEqual(t, firstResp["count"], float64(2), "Greet and Greeter should match")

	second, err := srv.handleSearchSymbols(ctx, callRequest("search_symbols", args))
	require.NoError(t, err)
	assert.Equal(t, true, resultJSON(t, second)["cache_hit"])
}

func TestSearchSymbolsRejectsEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.handleSearchSymbols(context.Background(), callRequest("search_symbols", map[string]interface{}{
		"query": "",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestShutdownIsIdempotentAndKeepsIndexQueryable(t *testing.T) {
	srv, file := newTestServer(t)
	ctx := context.Background()

	srv.cdb.Notify([]string{file})
	require.True(t, srv.index.BlockUntilIdleForTest(5*time.Second))

	srv.Shutdown()
	srv.Shutdown()

	// The published snapshot outlives the background workers.
	result, err := srv.handleLookupSymbol(ctx, callRequest("lookup_symbol", map[string]interface{}{
		"name": "NewGreeter",
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), resultJSON(t, result)["count"])
}

func TestFindReferencesListsDefinitionsAndUses(t *testing.T) {
	srv, file := newTestServer(t)
	ctx := context.Background()

	srv.cdb.Notify([]string{file})
	require.True(t, srv.index.BlockUntilIdleForTest(5*time.Second))

	result, err := srv.handleFindReferences(ctx, callRequest("find_references", map[string]interface{}{
		"name": "Greeter",
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Greater(t, response["count"], float64(0))

	refs := response["references"].([]interface{})
	kinds := map[string]bool{}
	for _, r := range refs {
		kinds[r.(map[string]interface{})["kind"].(string)] = true
	}
	assert.True(t, kinds["definition"], "type definition should be recorded")
}
