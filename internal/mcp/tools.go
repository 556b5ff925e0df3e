package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/symdex-mcp/internal/searcher"
	"github.com/dshills/symdex-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleEnqueueFiles handles the enqueue_files tool invocation
func (s *Server) handleEnqueueFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["files"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "files parameter is required", map[string]interface{}{
			"param":  "files",
			"reason": "missing or empty",
		})
	}

	files := make([]string, 0, len(raw))
	for _, v := range raw {
		path, ok := v.(string)
		if !ok || path == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "files must be non-empty strings", map[string]interface{}{
				"param": "files",
				"value": v,
			})
		}
		if !filepath.IsAbs(path) {
			return nil, newMCPError(ErrorCodeInvalidParams, "file paths must be absolute", map[string]interface{}{
				"param": "files",
				"value": path,
			})
		}
		files = append(files, path)
	}

	// Fan the change out through the compile database; the background
	// index picks it up via its subscription and schedules the work.
	s.cdb.Notify(files)

	stats := s.index.QueueStats()
	response := map[string]interface{}{
		"enqueued":     len(files),
		"queued_tasks": stats.Queued,
		"active_tasks": stats.Active,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLookupSymbol handles the lookup_symbol tool invocation
func (s *Server) handleLookupSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	resp, err := s.searcher.Search(searcher.SearchRequest{
		Query: name,
		Limit: getIntDefault(args, "limit", 20),
		Exact: true,
	})
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"name":       name,
		"symbols":    formatSymbols(resp.Symbols),
		"count":      len(resp.Symbols),
		"generation": resp.Generation,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	resp, err := s.searcher.Search(searcher.SearchRequest{
		Query:    query,
		Limit:    limit,
		Exact:    getBoolDefault(args, "exact", false),
		UseCache: getBoolDefault(args, "use_cache", true),
	})
	if err != nil {
		return nil, searchError(err)
	}

	response := map[string]interface{}{
		"query":       query,
		"symbols":     formatSymbols(resp.Symbols),
		"count":       len(resp.Symbols),
		"cache_hit":   resp.CacheHit,
		"generation":  resp.Generation,
		"duration_ms": resp.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindReferences handles the find_references tool invocation
func (s *Server) handleFindReferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	refs, err := s.searcher.References(name)
	if err != nil {
		return nil, searchError(err)
	}

	formatted := make([]map[string]interface{}, 0, len(refs))
	for _, r := range refs {
		formatted = append(formatted, map[string]interface{}{
			"name":   r.Name,
			"file":   r.File,
			"kind":   string(r.Kind),
			"line":   r.Position.Line,
			"column": r.Position.Column,
		})
	}

	response := map[string]interface{}{
		"name":       name,
		"references": formatted,
		"count":      len(formatted),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.index.QueueStats()
	snap := s.index.Index().Load()

	response := map[string]interface{}{
		"root":           s.cfg.Root,
		"storage":        string(s.cfg.Storage),
		"generation":     snap.Generation(),
		"symbols":        snap.SymbolCount(),
		"files":          snap.FileCount(),
		"tasks_enqueued": stats.Enqueued,
		"tasks_finished": stats.Finished,
		"tasks_queued":   stats.Queued,
		"tasks_active":   stats.Active,
		"idle":           stats.Queued == 0 && stats.Active == 0,
	}
	if !stats.LastIdle.IsZero() {
		response["last_idle"] = stats.LastIdle.Format(time.RFC3339)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// searchError maps searcher errors to MCP error codes
func searchError(err error) *MCPError {
	if errors.Is(err, types.ErrEmptyQuery) {
		return newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
	}
	if errors.Is(err, types.ErrInvalidLimit) {
		return newMCPError(ErrorCodeInvalidParams, "limit must be >= 1", nil)
	}
	return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// formatSymbols converts symbols to the JSON shape returned by tools
func formatSymbols(symbols []types.Symbol) []map[string]interface{} {
	formatted := make([]map[string]interface{}, 0, len(symbols))
	for _, sym := range symbols {
		entry := map[string]interface{}{
			"name":      sym.Name,
			"kind":      string(sym.Kind),
			"package":   sym.Package,
			"file":      sym.File,
			"signature": sym.Signature,
			"scope":     string(sym.Scope),
			"line":      sym.Start.Line,
		}
		if sym.Receiver != "" {
			entry["receiver"] = sym.Receiver
		}
		if sym.DocComment != "" {
			entry["doc"] = sym.DocComment
		}
		formatted = append(formatted, entry)
	}
	return formatted
}

// newMCPError creates a structured MCP error response
func newMCPError(code int, message string, data interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON pretty-prints a response map
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
