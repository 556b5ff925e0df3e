// Package extract runs symbol extraction over whole translation units.
//
// The background index treats extraction as a black box behind the Extractor
// interface; GoExtractor is the built-in implementation for Go sources. It
// parses every file of a unit, decomposes the output into one shard per file,
// and tags the result with whether any file reported errors. Failures yield a
// partial result rather than no result, so a unit with one broken file still
// contributes symbols for its healthy files.
package extract

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/symdex-mcp/internal/compiledb"
	"github.com/dshills/symdex-mcp/internal/parser"
	"github.com/dshills/symdex-mcp/internal/vfs"
	"github.com/dshills/symdex-mcp/pkg/types"
)

// Extractor produces the full index data for one translation unit
type Extractor interface {
	Extract(ctx context.Context, cmd compiledb.CompileCommand) (*types.ExtractionResult, error)
}

// GoExtractor extracts symbols and references from Go translation units
type GoExtractor struct {
	fs      vfs.Provider
	workers int
}

// NewGoExtractor creates an extractor reading through fs
func NewGoExtractor(fs vfs.Provider) *GoExtractor {
	return &GoExtractor{
		fs:      fs,
		workers: runtime.NumCPU(),
	}
}

// Extract parses every file of the unit concurrently and returns one shard
// per file. The error return is reserved for total failure (no file could be
// read); per-file problems are folded into HadErrors and a partial result.
func (e *GoExtractor) Extract(ctx context.Context, cmd compiledb.CompileCommand) (*types.ExtractionResult, error) {
	files := cmd.Files
	if len(files) == 0 {
		files = []string{cmd.Filename}
	}

	result := &types.ExtractionResult{
		MainFile: cmd.Filename,
		Shards:   make(map[string]*types.FileShard, len(files)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	p := parser.New()
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shard, hadErrors, err := e.extractFile(p, file, files)
			if err != nil {
				mu.Lock()
				result.HadErrors = true
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Shards[file] = shard
			if hadErrors {
				result.HadErrors = true
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if len(result.Shards) == 0 {
		result.HadErrors = true
		return result, fmt.Errorf("no file of %s could be extracted", cmd.Filename)
	}
	return result, nil
}

// extractFile parses one file into its shard
func (e *GoExtractor) extractFile(p *parser.Parser, file string, unitFiles []string) (*types.FileShard, bool, error) {
	content, err := e.fs.ReadFile(file)
	if err != nil {
		return nil, true, err
	}

	parsed, err := p.ParseBytes(file, content)
	if err != nil {
		return nil, true, err
	}

	// Dependencies are the sibling files of the unit, so that loading the
	// shard of any of them pulls the rest of the unit's shards along.
	deps := make([]string, 0, len(unitFiles)-1)
	for _, f := range unitFiles {
		if f != file {
			deps = append(deps, f)
		}
	}

	shard := &types.FileShard{
		Path:      file,
		Digest:    types.DigestOf(content),
		HadErrors: parsed.HasErrors(),
		Deps:      deps,
		Symbols:   parsed.Symbols,
		Refs:      parsed.References,
	}
	return shard, parsed.HasErrors(), nil
}
