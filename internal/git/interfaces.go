// Package git provides Git operations and abstractions.
package git

import (
	"context"

	"github.com/google/go-github/v72/github"
)

// Changelist represents a set of changes to be committed
type Changelist interface {
	ForEachModified(fn func(path string, content string) error) error
	IsModified(path string) bool
	IsEmpty() bool
}

// BaseCommit identifies the commit, and its tree, that new commits are built on
type BaseCommit struct {
	SHA     string
	TreeSHA string
}

// GitRepo provides Git repository operations
type GitRepo interface {
	LatestCommit(ctx context.Context, branch string) (BaseCommit, error)
	CommitChanges(ctx context.Context, base BaseCommit, changelist Changelist, commitMessage string) (*github.Commit, error)
	CreateBranch(ctx context.Context, branch string, sha string) error
	DeleteBranch(ctx context.Context, branch string) error
	CompareCommits(ctx context.Context, base string, head string) (*github.CommitsComparison, error)
}
