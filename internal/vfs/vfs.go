// Package vfs abstracts file content access for the indexing engine.
//
// Production code reads through the operating system filesystem; tests swap
// in an afero in-memory filesystem to index virtual file trees without
// touching disk.
package vfs

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/dshills/symdex-mcp/pkg/types"
)

// Provider reads file contents and computes content digests
type Provider interface {
	ReadFile(path string) ([]byte, error)
	Digest(path string) (types.Digest, error)
	Fs() afero.Fs
}

type aferoProvider struct {
	fs afero.Fs
}

// New returns a Provider backed by the operating system filesystem
func New() Provider {
	return &aferoProvider{fs: afero.NewOsFs()}
}

// NewFromFs returns a Provider backed by an arbitrary afero filesystem
func NewFromFs(fs afero.Fs) Provider {
	return &aferoProvider{fs: fs}
}

func (p *aferoProvider) ReadFile(path string) ([]byte, error) {
	content, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

func (p *aferoProvider) Digest(path string) (types.Digest, error) {
	content, err := p.ReadFile(path)
	if err != nil {
		return types.Digest{}, err
	}
	return types.DigestOf(content), nil
}

func (p *aferoProvider) Fs() afero.Fs {
	return p.fs
}
