// Package pipeline runs one fetch, parse, sort, render and publish pass over the event issues of a repository.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/go-github/v72/github"

	"github.com/cchalm/upcoming-events/internal/config"
	"github.com/cchalm/upcoming-events/internal/event"
	githubpkg "github.com/cchalm/upcoming-events/internal/github"
	"github.com/cchalm/upcoming-events/internal/render"
	"github.com/cchalm/upcoming-events/internal/telemetry"
	"github.com/cchalm/upcoming-events/internal/workspace"
)

// ReadmeUpdater rewrites the managed events section of the README
type ReadmeUpdater interface {
	Update(ctx context.Context, content string) (bool, error)
}

// Pipeline publishes the upcoming events of one repository
type Pipeline struct {
	config   config.Config
	location *time.Location
	mode     Mode

	fetcher   githubpkg.IssueFetcher
	readme    ReadmeUpdater       // Required when mode includes the README
	workspace workspace.Workspace // Required when mode includes pages
	telemetry *telemetry.Provider

	// dryRun receives a diff of the pending page changes instead of a pull request being opened. Nil publishes
	dryRun io.Writer
}

// Result summarizes a run
type Result struct {
	Records       []event.Record
	ReadmeChanged bool
	PagesChanged  int
	PullRequest   *github.PullRequest // Nil when no pull request was opened
}

// New creates a Pipeline. readme may be nil if mode does not include the README, and ws may be nil if mode does not
// include pages
func New(
	cfg config.Config,
	mode Mode,
	fetcher githubpkg.IssueFetcher,
	readme ReadmeUpdater,
	ws workspace.Workspace,
	tel *telemetry.Provider,
	dryRun io.Writer,
) (*Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if tel == nil {
		return nil, fmt.Errorf("telemetry provider is required")
	}
	if mode.IncludesReadme() && readme == nil {
		return nil, fmt.Errorf("mode %s requires a README updater", mode)
	}
	if mode.IncludesPages() && ws == nil {
		return nil, fmt.Errorf("mode %s requires a workspace", mode)
	}

	return &Pipeline{
		config:    cfg,
		location:  loc,
		mode:      mode,
		fetcher:   fetcher,
		readme:    readme,
		workspace: ws,
		telemetry: tel,
		dryRun:    dryRun,
	}, nil
}

// Run executes the pipeline. Any error aborts the run; work already published by earlier stages is not undone
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var result Result

	issues, err := stage(ctx, p, "fetch", func(ctx context.Context) ([]githubpkg.Issue, error) {
		return p.fetcher.FetchOpenIssues(ctx, p.config.Owner, p.config.Repo, p.config.Label)
	})
	if err != nil {
		return result, err
	}
	p.telemetry.RecordIssues(len(issues))

	records, err := stage(ctx, p, "parse", func(ctx context.Context) ([]event.Record, error) {
		return event.ParseAll(issues, p.location)
	})
	if err != nil {
		return result, err
	}

	result.Records = event.Sort(records)
	log.Printf("[pipeline] %d upcoming event(s)", len(result.Records))

	if p.mode.IncludesReadme() {
		result.ReadmeChanged, err = stage(ctx, p, "publish-readme", func(ctx context.Context) (bool, error) {
			return p.readme.Update(ctx, render.List(result.Records, p.config.Header))
		})
		if err != nil {
			return result, err
		}
	}

	if p.mode.IncludesPages() {
		_, err = stage(ctx, p, "publish-pages", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.publishPages(ctx, &result)
		})
		if err != nil {
			return result, err
		}
	}

	p.telemetry.RecordEvents(len(result.Records))
	p.telemetry.MarkSuccess()
	return result, nil
}

func (p *Pipeline) publishPages(ctx context.Context, result *Result) error {
	pages, err := render.Pages(result.Records, p.config.PagesDir)
	if err != nil {
		return err
	}

	fs := p.workspace.FileSystem()
	for _, page := range pages {
		if err := fs.Write(ctx, page.Path, page.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", page.Path, err)
		}
	}

	if p.dryRun != nil {
		result.PagesChanged, err = p.workspace.Preview(ctx, p.dryRun)
		if err != nil {
			return fmt.Errorf("failed to preview pages: %w", err)
		}
		log.Printf("[pipeline] Dry run: %d page(s) would change", result.PagesChanged)
		return nil
	}

	body := fmt.Sprintf("Generated from %d open issue(s) labelled `%s`.\n\n%s",
		len(result.Records), p.config.Label, render.List(result.Records, "### Events"))
	pr, err := p.workspace.PublishChangesForReview(ctx, p.config.PagesCommitMessage, p.config.PullRequestTitle, body)
	if errors.Is(err, workspace.ErrNoChanges) {
		log.Printf("[pipeline] Event pages are already up to date")
		return nil
	} else if err != nil {
		return err
	}

	result.PagesChanged = len(pages)
	result.PullRequest = pr
	return nil
}

// stage runs fn inside a telemetry span named name
func stage[T any](ctx context.Context, p *Pipeline, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, end := p.telemetry.StartStage(ctx, name)
	v, err := fn(ctx)
	end(err)
	return v, err
}
