package filesystem

import (
	"context"
	"slices"

	"github.com/cchalm/upcoming-events/internal/git"
)

// MemDiffFileSystem sits on top of a ReadOnlyFileSystem and tracks writes in-memory
type MemDiffFileSystem struct {
	baseFileSystem ReadOnlyFileSystem

	workingTree map[string]string // path -> content (files we've written)
}

// NewMemDiffFileSystem creates a new in-memory diff file system
func NewMemDiffFileSystem(baseFileSystem ReadOnlyFileSystem) *MemDiffFileSystem {
	return &MemDiffFileSystem{
		baseFileSystem: baseFileSystem,
		workingTree:    make(map[string]string),
	}
}

func (mdfs *MemDiffFileSystem) Read(ctx context.Context, path string) (string, error) {
	if content, exists := mdfs.workingTree[path]; exists {
		return content, nil
	}

	return mdfs.baseFileSystem.Read(ctx, path)
}

func (mdfs *MemDiffFileSystem) Write(ctx context.Context, path string, content string) error {
	mdfs.workingTree[path] = content
	return nil
}

func (mdfs *MemDiffFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	if _, exists := mdfs.workingTree[path]; exists {
		return true, nil
	}

	return mdfs.baseFileSystem.FileExists(ctx, path)
}

// Base returns the file system this one tracks changes against
func (mdfs *MemDiffFileSystem) Base() ReadOnlyFileSystem {
	return mdfs.baseFileSystem
}

// GetChangelist returns the writes tracked in this filesystem as a Changelist
func (mdfs *MemDiffFileSystem) GetChangelist() git.Changelist {
	return &memDiffChangelist{
		workingTree: mdfs.workingTree,
	}
}

// memDiffChangelist implements the Changelist interface for MemDiffFileSystem
type memDiffChangelist struct {
	workingTree map[string]string
}

// ForEachModified visits modified files in path order so that trees and previews built from a changelist are stable
func (mdcl *memDiffChangelist) ForEachModified(fn func(path string, content string) error) error {
	paths := make([]string, 0, len(mdcl.workingTree))
	for path := range mdcl.workingTree {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	for _, path := range paths {
		if err := fn(path, mdcl.workingTree[path]); err != nil {
			return err
		}
	}
	return nil
}

func (mdcl *memDiffChangelist) IsModified(path string) bool {
	_, exists := mdcl.workingTree[path]
	return exists
}

func (mdcl *memDiffChangelist) IsEmpty() bool {
	return len(mdcl.workingTree) == 0
}
