package git

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
)

// githubGitRepo implements a handful of porcelain git commands using the GitHub API. It manipulates a remote git
// repository directly; e.g. commits appear on the remote without a push
type githubGitRepo struct {
	git          *github.GitService          // For low-level git operations
	reposService *github.RepositoriesService // For high-level operations supported by the github API

	owner string
	repo  string
}

// NewGithubGitRepo creates a new GitHub-backed Git repository
func NewGithubGitRepo(gitService *github.GitService, reposService *github.RepositoriesService, owner string, repo string) GitRepo {
	return &githubGitRepo{
		git:          gitService,
		reposService: reposService,
		owner:        owner,
		repo:         repo,
	}
}

// LatestCommit returns the commit at the tip of branch along with its tree
func (ggr *githubGitRepo) LatestCommit(ctx context.Context, branch string) (BaseCommit, error) {
	commits, _, err := ggr.reposService.ListCommits(ctx, ggr.owner, ggr.repo, &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return BaseCommit{}, fmt.Errorf("failed to list commits on %s: %w", branch, err)
	}
	if len(commits) == 0 {
		return BaseCommit{}, fmt.Errorf("branch %s has no commits", branch)
	}

	latest := commits[0]
	return BaseCommit{
		SHA:     latest.GetSHA(),
		TreeSHA: latest.GetCommit().GetTree().GetSHA(),
	}, nil
}

// CommitChanges creates a commit on top of base containing the changelist. No ref is moved; the returned commit is
// reachable only once a branch points at it
func (ggr *githubGitRepo) CommitChanges(ctx context.Context, base BaseCommit, changelist Changelist, commitMessage string) (*github.Commit, error) {
	if changelist.IsEmpty() {
		return nil, fmt.Errorf("changelist is empty")
	}

	// Create tree entries for all modified files
	var entries []*github.TreeEntry
	err := changelist.ForEachModified(func(path string, content string) error {
		blob, _, err := ggr.git.CreateBlob(ctx, ggr.owner, ggr.repo, &github.Blob{
			Content:  github.Ptr(content),
			Encoding: github.Ptr("utf-8"),
		})
		if err != nil {
			return fmt.Errorf("failed to create blob for %s: %w", path, err)
		}

		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(path),
			Mode: github.Ptr("100644"), // Regular file mode
			Type: github.Ptr("blob"),
			SHA:  blob.SHA,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	newTree, _, err := ggr.git.CreateTree(ctx, ggr.owner, ggr.repo, base.TreeSHA, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}

	newCommit, _, err := ggr.git.CreateCommit(ctx, ggr.owner, ggr.repo, &github.Commit{
		Message: github.Ptr(commitMessage),
		Tree:    newTree,
		Parents: []*github.Commit{{SHA: github.Ptr(base.SHA)}},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create commit: %w", err)
	}

	return newCommit, nil
}

// CreateBranch creates a branch pointing at sha
func (ggr *githubGitRepo) CreateBranch(ctx context.Context, branch string, sha string) error {
	newRef := &github.Reference{
		Ref: github.Ptr(branchRef(branch)),
		Object: &github.GitObject{
			SHA: github.Ptr(sha),
		},
	}

	_, _, err := ggr.git.CreateRef(ctx, ggr.owner, ggr.repo, newRef)
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	return nil
}

// DeleteBranch deletes a branch
func (ggr *githubGitRepo) DeleteBranch(ctx context.Context, branch string) error {
	_, err := ggr.git.DeleteRef(ctx, ggr.owner, ggr.repo, branchRef(branch))
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}

	return nil
}

// CompareCommits compares two commits and returns the diff
func (ggr *githubGitRepo) CompareCommits(ctx context.Context, base string, head string) (*github.CommitsComparison, error) {
	comparison, _, err := ggr.reposService.CompareCommits(ctx, ggr.owner, ggr.repo, base, head, &github.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to compare commits: %w", err)
	}

	return comparison, nil
}

func branchRef(branch string) string {
	return fmt.Sprintf("refs/heads/%s", branch)
}
