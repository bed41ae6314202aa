package filesystem

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v72/github"
)

// githubReadOnlyFileSystem implements ReadOnlyFileSystem for GitHub repositories
type githubReadOnlyFileSystem struct {
	repos *github.RepositoriesService
	owner string
	repo  string
	ref   string
}

// NewGithubReadOnlyFileSystem creates a new GitHub-backed read-only file system. An empty ref reads the default branch
func NewGithubReadOnlyFileSystem(repos *github.RepositoriesService, owner, repo, ref string) ReadOnlyFileSystem {
	return &githubReadOnlyFileSystem{
		repos: repos,
		owner: owner,
		repo:  repo,
		ref:   ref,
	}
}

func (grfs *githubReadOnlyFileSystem) Read(ctx context.Context, path string) (string, error) {
	fileContent, err := grfs.getFile(ctx, path)
	if err != nil {
		return "", err
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode file content: %w", err)
	}

	return content, nil
}

func (grfs *githubReadOnlyFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := grfs.getFile(ctx, path)
	if err == ErrFileNotFound {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}

	return true, nil
}

func (grfs *githubReadOnlyFileSystem) getFile(ctx context.Context, path string) (*github.RepositoryContent, error) {
	fileContent, _, resp, err := grfs.repos.GetContents(ctx, grfs.owner, grfs.repo, path, &github.RepositoryContentGetOptions{
		Ref: grfs.ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file content: %w", err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("path is not a file: %s", path)
	}

	return fileContent, nil
}

// githubFileSystem writes files straight to a branch, one commit per write
type githubFileSystem struct {
	githubReadOnlyFileSystem

	branch        string
	commitMessage string
}

// NewGithubFileSystem creates a file system whose writes are committed directly to branch with commitMessage. An
// empty branch targets the default branch
func NewGithubFileSystem(repos *github.RepositoriesService, owner, repo, branch, commitMessage string) FileSystem {
	return &githubFileSystem{
		githubReadOnlyFileSystem: githubReadOnlyFileSystem{
			repos: repos,
			owner: owner,
			repo:  repo,
			ref:   branch,
		},
		branch:        branch,
		commitMessage: commitMessage,
	}
}

func (gfs *githubFileSystem) Write(ctx context.Context, path string, content string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(gfs.commitMessage),
		Content: []byte(content),
	}
	if gfs.branch != "" {
		opts.Branch = github.Ptr(gfs.branch)
	}

	// Updating an existing file requires its current blob SHA
	existing, err := gfs.getFile(ctx, path)
	if err == nil {
		opts.SHA = existing.SHA
	} else if err != ErrFileNotFound {
		return err
	}

	if opts.SHA != nil {
		_, _, err = gfs.repos.UpdateFile(ctx, gfs.owner, gfs.repo, path, opts)
	} else {
		_, _, err = gfs.repos.CreateFile(ctx, gfs.owner, gfs.repo, path, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
