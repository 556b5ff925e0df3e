// Package compiledb supplies compile commands for translation units and
// fans change notifications out to subscribers.
//
// For Go sources a translation unit is the main file's package directory:
// the compile command lists every .go file in that directory, and extracting
// the unit produces one shard per listed file.
package compiledb

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/dshills/symdex-mcp/internal/vfs"
)

// CompileCommand describes how to build one translation unit. It is consumed,
// not stored, by the background index.
type CompileCommand struct {
	Directory string   // Package directory
	Filename  string   // Absolute path of the main file
	Files     []string // Absolute paths of all files in the unit
}

// Database supplies compile commands per file and change notifications
type Database interface {
	// CompileCommand returns the command for the unit containing path, or
	// false if the path is not part of the project.
	CompileCommand(path string) (*CompileCommand, bool)

	// ProjectRoot returns the project root directory the database covers
	ProjectRoot() string

	// Subscribe registers a callback invoked with changed file paths. The
	// returned func removes the subscription.
	Subscribe(fn func(changed []string)) (unsubscribe func())
}

// PackageDB is a Database over a Go project root: one translation unit per
// package directory, units discovered lazily from the filesystem.
type PackageDB struct {
	root string
	fs   vfs.Provider

	mu   sync.Mutex
	subs map[int]func(changed []string)
	next int
}

// NewPackageDB creates a database rooted at root
func NewPackageDB(root string, fs vfs.Provider) *PackageDB {
	return &PackageDB{
		root: root,
		fs:   fs,
		subs: make(map[int]func(changed []string)),
	}
}

// CompileCommand builds the command for the package directory of path
func (db *PackageDB) CompileCommand(path string) (*CompileCommand, bool) {
	if !strings.HasSuffix(path, ".go") {
		return nil, false
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(db.root, abs)
	}
	rel, err := filepath.Rel(db.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, false
	}

	dir := filepath.Dir(abs)
	files, err := db.packageFiles(dir)
	if err != nil || len(files) == 0 {
		return nil, false
	}

	return &CompileCommand{
		Directory: dir,
		Filename:  abs,
		Files:     files,
	}, true
}

// packageFiles lists the .go files of one package directory
func (db *PackageDB) packageFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(db.fs.Fs(), dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ProjectRoot returns the project root directory
func (db *PackageDB) ProjectRoot() string {
	return db.root
}

// Subscribe registers a change callback
func (db *PackageDB) Subscribe(fn func(changed []string)) func() {
	db.mu.Lock()
	id := db.next
	db.next++
	db.subs[id] = fn
	db.mu.Unlock()

	return func() {
		db.mu.Lock()
		delete(db.subs, id)
		db.mu.Unlock()
	}
}

// Notify fans a change notification out to all subscribers. Callers invoke it
// when they learn that files changed; the database does no watching of its
// own.
func (db *PackageDB) Notify(changed []string) {
	db.mu.Lock()
	subs := make([]func(changed []string), 0, len(db.subs))
	for _, fn := range db.subs {
		subs = append(subs, fn)
	}
	db.mu.Unlock()

	for _, fn := range subs {
		fn(changed)
	}
}
