// Package mcp implements the Model Context Protocol (MCP) server for Symdex.
//
// The server exposes five tools to AI coding assistants:
//   - enqueue_files: Queue changed files for background indexing
//   - lookup_symbol: Exact-name symbol lookup
//   - search_symbols: Fuzzy symbol search
//   - find_references: Definitions and uses of a symbol name
//   - index_status: Queue and snapshot statistics
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport, so stdout is
// reserved for protocol traffic and all logging goes to stderr.
//
// Indexing runs entirely in the background: enqueue_files returns as
// soon as the work is scheduled, and query tools always answer from the
// last published snapshot without blocking on in-flight indexing.
package mcp
