// Package types provides shared type definitions for the Symdex MCP server.
//
// This package defines the domain types used across the indexing engine:
// symbols and references extracted from Go source, content digests, per-file
// index shards, and parse results.
//
// # Core Types
//
// Symbol represents a Go language construct (function, method, type, etc.)
// extracted from source code via AST parsing:
//
//	symbol := &types.Symbol{
//	    Name:      "ParseFile",
//	    Kind:      types.KindFunction,
//	    Package:   "parser",
//	    Signature: "func ParseFile(path string) (*ParseResult, error)",
//	}
//
// FileShard is the unit of persistence and incremental merge. One shard holds
// everything extracted from a single source file, fingerprinted by the
// content digest it was produced from:
//
//	shard := &types.FileShard{
//	    Path:    "/src/proj/parser.go",
//	    Digest:  types.DigestOf(content),
//	    Symbols: symbols,
//	}
//
// ExtractionResult is a translation unit's complete output, decomposed into
// one shard per touched file. The background index merges shards whose digest
// or error state changed and provably skips the rest.
//
// # Digests
//
// Digest is a SHA-256 content fingerprint, comparable for equality. The
// deduplication scheme in the background index is built entirely on digest
// comparison: a file whose digest and error state are unchanged since the
// last merge is never re-extracted or re-stored.
package types
