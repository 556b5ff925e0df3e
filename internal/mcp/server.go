package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/symdex-mcp/internal/compiledb"
	"github.com/dshills/symdex-mcp/internal/config"
	"github.com/dshills/symdex-mcp/internal/extract"
	"github.com/dshills/symdex-mcp/internal/index"
	"github.com/dshills/symdex-mcp/internal/searcher"
	"github.com/dshills/symdex-mcp/internal/storage"
	"github.com/dshills/symdex-mcp/internal/vfs"
)

const (
	// ServerName is the MCP server name
	ServerName = "symdex-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	cdb      *compiledb.PackageDB
	index    *index.BackgroundIndex
	searcher *searcher.Searcher
}

// NewServer creates a new MCP server rooted at cfg.Root. The background
// index starts its workers immediately; files become searchable as they
// are enqueued and merged.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := validatePath(cfg.Root); err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}

	fs := vfs.New()
	cdb := compiledb.NewPackageDB(cfg.Root, fs)

	idx := index.New(fs, cdb, extract.NewGoExtractor(fs), storage.NewFactory(cfg.Storage), index.Options{
		Workers:         cfg.Workers,
		RebuildBatch:    cfg.RebuildBatch,
		RebuildInterval: cfg.RebuildInterval,
	})

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		cfg:      cfg,
		cdb:      cdb,
		index:    idx,
		searcher: searcher.NewSearcher(idx.Index()),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		idx.Stop()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
// The background index is stopped before returning, flushing any
// pending snapshot rebuild.
func (s *Server) Serve(ctx context.Context) error {
	defer s.index.Stop()
	return server.ServeStdio(s.mcp)
}

// Shutdown stops the background index, flushing any pending snapshot
// rebuild. Safe to call more than once and concurrently with Serve,
// which ServeStdio may outlive when shutdown is signal-driven.
func (s *Server) Shutdown() {
	s.index.Stop()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(enqueueFilesTool(), s.handleEnqueueFiles)
	s.mcp.AddTool(lookupSymbolTool(), s.handleLookupSymbol)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(findReferencesTool(), s.handleFindReferences)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
	return nil
}
