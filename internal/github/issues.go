// Package github wraps the parts of the GitHub API used to read event issues and open pull requests.
package github

import (
	"context"
	"fmt"
	"log"

	"github.com/google/go-github/v72/github"
)

// IssueFetcher lists issues from a repository
type IssueFetcher interface {
	FetchOpenIssues(ctx context.Context, owner, repo, label string) ([]Issue, error)
}

type issueFetcher struct {
	issues *github.IssuesService
}

// NewIssueFetcher creates an IssueFetcher backed by the GitHub issues API
func NewIssueFetcher(issuesService *github.IssuesService) IssueFetcher {
	return &issueFetcher{
		issues: issuesService,
	}
}

// FetchOpenIssues returns every open issue carrying the given label, in the order the API returns them. All result
// pages are read before returning
func (f *issueFetcher) FetchOpenIssues(ctx context.Context, owner, repo, label string) ([]Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:  "open",
		Labels: []string{label},
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var allIssues []Issue
	for {
		page, resp, err := f.issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
		}

		for _, issue := range page {
			if issue == nil || issue.Number == nil {
				log.Print("[fetch] Warning: unexpected nil, skipping issue")
				continue
			}
			allIssues = append(allIssues, convertIssue(owner, repo, issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	log.Printf("[fetch] Found %d open issue(s) labelled %q in %s/%s", len(allIssues), label, owner, repo)
	return allIssues, nil
}

func convertIssue(owner, repo string, issue *github.Issue) Issue {
	labels := []string{}
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return Issue{
		Owner:  owner,
		Repo:   repo,
		Number: issue.GetNumber(),

		Title: issue.GetTitle(),
		Body:  issue.GetBody(),
		URL:   issue.GetHTMLURL(),

		Author: Author{
			Login: issue.GetUser().GetLogin(),
			URL:   issue.GetUser().GetHTMLURL(),
		},

		Labels: labels,
	}
}
