package workspace

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/upcoming-events/internal/filesystem"
	"github.com/cchalm/upcoming-events/internal/git"
	githubpkg "github.com/cchalm/upcoming-events/internal/github"
	"github.com/cchalm/upcoming-events/internal/preview"
)

var ErrNoChanges = fmt.Errorf("no changes")

// remoteWorkspace tracks changes in-memory and publishes them through the GitHub API without a local clone. Publishing
// builds a commit on top of the latest commit of the base branch, points a fresh review branch at it and, if the
// branch differs from the base, opens a pull request. A failure partway through can leave the review branch behind
type remoteWorkspace struct {
	gitRepo   git.GitRepo
	fs        *filesystem.MemDiffFileSystem
	prService githubpkg.PullRequestService

	owner string
	repo  string

	baseBranch   string
	reviewBranch string
}

// NewRemoteWorkspace creates a workspace for owner/repo that reads from baseBranch and publishes to reviewBranch
func NewRemoteWorkspace(githubClient *github.Client, owner, repo, baseBranch, reviewBranch string) Workspace {
	baseFS := filesystem.NewGithubReadOnlyFileSystem(githubClient.Repositories, owner, repo, baseBranch)

	return newRemoteWorkspace(
		git.NewGithubGitRepo(githubClient.Git, githubClient.Repositories, owner, repo),
		filesystem.NewMemDiffFileSystem(baseFS),
		githubpkg.NewPullRequestService(githubClient.PullRequests),
		owner,
		repo,
		baseBranch,
		reviewBranch,
	)
}

func newRemoteWorkspace(
	gitRepo git.GitRepo,
	fs *filesystem.MemDiffFileSystem,
	prService githubpkg.PullRequestService,
	owner string,
	repo string,
	baseBranch string,
	reviewBranch string,
) *remoteWorkspace {
	return &remoteWorkspace{
		gitRepo:      gitRepo,
		fs:           fs,
		prService:    prService,
		owner:        owner,
		repo:         repo,
		baseBranch:   baseBranch,
		reviewBranch: reviewBranch,
	}
}

func (rw *remoteWorkspace) FileSystem() filesystem.FileSystem {
	return rw.fs
}

func (rw *remoteWorkspace) PublishChangesForReview(ctx context.Context, commitMessage, pullRequestTitle, pullRequestBody string) (*github.PullRequest, error) {
	changelist := rw.fs.GetChangelist()
	if changelist.IsEmpty() {
		return nil, ErrNoChanges
	}

	base, err := rw.gitRepo.LatestCommit(ctx, rw.baseBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest commit: %w", err)
	}

	commit, err := rw.gitRepo.CommitChanges(ctx, base, changelist, commitMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to commit changes: %w", err)
	}

	if err := rw.gitRepo.CreateBranch(ctx, rw.reviewBranch, commit.GetSHA()); err != nil {
		return nil, fmt.Errorf("failed to create review branch: %w", err)
	}
	log.Printf("[publish] Created branch %s at %s", rw.reviewBranch, commit.GetSHA())

	comparison, err := rw.gitRepo.CompareCommits(ctx, rw.baseBranch, rw.reviewBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s with %s: %w", rw.reviewBranch, rw.baseBranch, err)
	}

	if len(comparison.Files) == 0 {
		log.Printf("[publish] Branch %s has no changes relative to %s, deleting it", rw.reviewBranch, rw.baseBranch)
		if err := rw.gitRepo.DeleteBranch(ctx, rw.reviewBranch); err != nil {
			return nil, fmt.Errorf("failed to delete unchanged review branch: %w", err)
		}
		return nil, ErrNoChanges
	}

	pr, err := rw.prService.CreatePullRequest(ctx, rw.owner, rw.repo, rw.baseBranch, rw.reviewBranch, pullRequestTitle, pullRequestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	log.Printf("[publish] Opened pull request #%d: %s", pr.GetNumber(), pr.GetHTMLURL())

	return pr, nil
}

func (rw *remoteWorkspace) Preview(ctx context.Context, w io.Writer) (int, error) {
	return preview.Changelist(ctx, w, rw.fs.Base(), rw.fs.GetChangelist())
}
