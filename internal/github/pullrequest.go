package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v72/github"
)

// PullRequestService handles GitHub pull request operations
type PullRequestService interface {
	CreatePullRequest(ctx context.Context, owner, repo, baseBranch, sourceBranch, title, body string) (*github.PullRequest, error)
}

// pullRequestService implements PullRequestService using GitHub API
type pullRequestService struct {
	prs *github.PullRequestsService
}

// NewPullRequestService creates a new PullRequestService
func NewPullRequestService(prService *github.PullRequestsService) PullRequestService {
	return &pullRequestService{
		prs: prService,
	}
}

func (s *pullRequestService) CreatePullRequest(ctx context.Context, owner, repo, baseBranch, sourceBranch, title, body string) (*github.PullRequest, error) {
	newPR := &github.NewPullRequest{
		Title:               github.Ptr(title),
		Head:                github.Ptr(sourceBranch),
		Base:                github.Ptr(baseBranch),
		Body:                github.Ptr(body),
		MaintainerCanModify: github.Ptr(true),
	}

	pr, _, err := s.prs.Create(ctx, owner, repo, newPR)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return pr, nil
}

// DefaultBranch returns the name of a repository's default branch
func DefaultBranch(ctx context.Context, repos *github.RepositoriesService, owner, repo string) (string, error) {
	repoInfo, _, err := repos.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repo info: %w", err)
	}
	if repoInfo.DefaultBranch == nil {
		return "", fmt.Errorf("nil default branch")
	}
	return *repoInfo.DefaultBranch, nil
}
