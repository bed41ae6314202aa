package readme

import (
	"context"
	"fmt"
	"log"

	"github.com/cchalm/upcoming-events/internal/filesystem"
)

// Updater rewrites one managed section of a document stored in a file system
type Updater struct {
	fs         filesystem.FileSystem
	path       string
	sectionKey string
}

// NewUpdater creates an Updater for the section named sectionKey in the file at path
func NewUpdater(fs filesystem.FileSystem, path string, sectionKey string) *Updater {
	return &Updater{
		fs:         fs,
		path:       path,
		sectionKey: sectionKey,
	}
}

// Update replaces the section with content and writes the document back if it changed. It reports whether a write
// happened. Missing markers fail the update before anything is written
func (u *Updater) Update(ctx context.Context, content string) (bool, error) {
	doc, err := u.fs.Read(ctx, u.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", u.path, err)
	}

	updated, err := ReplaceSection(doc, u.sectionKey, content)
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", u.path, err)
	}

	if updated == doc {
		log.Printf("[readme] %s section %q is already up to date", u.path, u.sectionKey)
		return false, nil
	}

	if err := u.fs.Write(ctx, u.path, updated); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", u.path, err)
	}

	log.Printf("[readme] Updated section %q in %s", u.sectionKey, u.path)
	return true, nil
}
