// Package workspace collects generated files and publishes them for review as a pull request.
package workspace

import (
	"context"
	"io"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/upcoming-events/internal/filesystem"
)

// Workspace represents a set of pending file changes against a repository's default branch
type Workspace interface {
	// FileSystem returns the file system pending changes are written to
	FileSystem() filesystem.FileSystem

	// PublishChangesForReview commits the pending changes to a new branch and opens a pull request for them. If the
	// branch ends up identical to the default branch it is deleted and ErrNoChanges is returned
	PublishChangesForReview(ctx context.Context, commitMessage, pullRequestTitle, pullRequestBody string) (*github.PullRequest, error)

	// Preview writes a diff of the pending changes to w instead of publishing them and returns the number of files
	// that differ from the base branch
	Preview(ctx context.Context, w io.Writer) (int, error)
}
