package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-github/v72/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/upcoming-events/internal/config"
	"github.com/cchalm/upcoming-events/internal/event"
	"github.com/cchalm/upcoming-events/internal/filesystem"
	githubpkg "github.com/cchalm/upcoming-events/internal/github"
	"github.com/cchalm/upcoming-events/internal/telemetry"
	"github.com/cchalm/upcoming-events/internal/workspace"
)

type fakeFetcher struct {
	issues []githubpkg.Issue
	err    error
	label  string
}

func (ff *fakeFetcher) FetchOpenIssues(ctx context.Context, owner, repo, label string) ([]githubpkg.Issue, error) {
	ff.label = label
	return ff.issues, ff.err
}

type fakeReadme struct {
	content string
	calls   int
	err     error
}

func (fr *fakeReadme) Update(ctx context.Context, content string) (bool, error) {
	fr.calls++
	if fr.err != nil {
		return false, fr.err
	}
	changed := content != fr.content
	fr.content = content
	return changed, nil
}

type emptyFS struct{}

func (emptyFS) Read(ctx context.Context, path string) (string, error) {
	return "", filesystem.ErrFileNotFound
}

func (emptyFS) FileExists(ctx context.Context, path string) (bool, error) {
	return false, nil
}

type fakeWorkspace struct {
	fs         *filesystem.MemDiffFileSystem
	publishErr error
	published  []string
	previewed  int
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{fs: filesystem.NewMemDiffFileSystem(emptyFS{})}
}

func (fw *fakeWorkspace) FileSystem() filesystem.FileSystem {
	return fw.fs
}

func (fw *fakeWorkspace) PublishChangesForReview(ctx context.Context, commitMessage, pullRequestTitle, pullRequestBody string) (*github.PullRequest, error) {
	if fw.publishErr != nil {
		return nil, fw.publishErr
	}
	fw.published = append(fw.published, commitMessage+"|"+pullRequestTitle)
	return &github.PullRequest{Number: github.Ptr(7)}, nil
}

func (fw *fakeWorkspace) Preview(ctx context.Context, w io.Writer) (int, error) {
	fw.previewed++
	n := 0
	err := fw.fs.GetChangelist().ForEachModified(func(path string, content string) error {
		n++
		_, err := fmt.Fprintln(w, path)
		return err
	})
	return n, err
}

func eventIssue(number int, title, date, clock string) githubpkg.Issue {
	body := strings.Join([]string{
		"### Date", "", date, "",
		"### Time", "", clock, "",
		"### Venue", "", "The Hall", "",
		"### City", "", "Irvine", "",
		"### Link", "", "https://example.com/e", "",
	}, "\n")
	return githubpkg.Issue{
		Owner:  "socalnug",
		Repo:   "site",
		Number: number,
		Title:  title,
		Body:   body,
		URL:    fmt.Sprintf("https://github.com/socalnug/site/issues/%d", number),
		Author: githubpkg.Author{Login: "alice", URL: "https://github.com/alice"},
		Labels: []string{"event"},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Owner = "socalnug"
	cfg.Repo = "site"
	return cfg
}

func newTestPipeline(t *testing.T, mode Mode, fetcher githubpkg.IssueFetcher, readme ReadmeUpdater, ws workspace.Workspace, dryRun io.Writer) *Pipeline {
	t.Helper()
	tel, err := telemetry.NewProvider(context.Background(), telemetry.TelemetryConfig{})
	require.NoError(t, err)
	p, err := New(testConfig(), mode, fetcher, readme, ws, tel, dryRun)
	require.NoError(t, err)
	return p
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"readme", "pages", "all"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		require.Equal(t, Mode(s), m)
	}

	_, err := ParseMode("both")
	require.Error(t, err)
}

func TestMode_Includes(t *testing.T) {
	require.True(t, ModeReadme.IncludesReadme())
	require.False(t, ModeReadme.IncludesPages())
	require.True(t, ModePages.IncludesPages())
	require.False(t, ModePages.IncludesReadme())
	require.True(t, ModeAll.IncludesReadme())
	require.True(t, ModeAll.IncludesPages())
}

func TestNew_RequiresOutputsForMode(t *testing.T) {
	tel, err := telemetry.NewProvider(context.Background(), telemetry.TelemetryConfig{})
	require.NoError(t, err)

	_, err = New(testConfig(), ModeReadme, &fakeFetcher{}, nil, nil, tel, nil)
	require.Error(t, err)

	_, err = New(testConfig(), ModePages, &fakeFetcher{}, nil, nil, tel, nil)
	require.Error(t, err)

	_, err = New(testConfig(), ModePages, &fakeFetcher{}, nil, newFakeWorkspace(), tel, nil)
	require.NoError(t, err)
}

func TestNew_RequiresTelemetry(t *testing.T) {
	_, err := New(testConfig(), ModeReadme, &fakeFetcher{}, &fakeReadme{}, nil, nil, nil)
	require.ErrorContains(t, err, "telemetry provider is required")
}

func TestRun_ReadmeSortsEvents(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{
		eventIssue(2, "Later", "2025-03-10", "18:00"),
		eventIssue(1, "Sooner", "2025-03-01", "18:00"),
	}}
	readme := &fakeReadme{}

	p := newTestPipeline(t, ModeReadme, fetcher, readme, nil, nil)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "event", fetcher.label)
	require.True(t, result.ReadmeChanged)
	require.Len(t, result.Records, 2)
	require.Equal(t, 1, result.Records[0].Number)
	require.Equal(t, 2, result.Records[1].Number)

	lines := strings.Split(readme.content, "\n")
	require.Equal(t, "## Join Socal Nug at an upcoming event", lines[0])
	require.Equal(t, "", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "- [#1]("))
	require.True(t, strings.HasPrefix(lines[3], "- [#2]("))
}

func TestRun_ReadmeUnchangedOnSecondRun(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(1, "Meetup", "2025-03-01", "18:00")}}
	readme := &fakeReadme{}

	p := newTestPipeline(t, ModeReadme, fetcher, readme, nil, nil)
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.ReadmeChanged)
	require.Equal(t, 2, readme.calls)
}

func TestRun_NoEventsRendersPlaceholder(t *testing.T) {
	readme := &fakeReadme{}

	p := newTestPipeline(t, ModeReadme, &fakeFetcher{}, readme, nil, nil)
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Records)
	require.Contains(t, readme.content, "There are currently no upcoming events scheduled.")
}

func TestRun_FetchErrorAborts(t *testing.T) {
	readme := &fakeReadme{}
	fetchErr := errors.New("boom")

	p := newTestPipeline(t, ModeReadme, &fakeFetcher{err: fetchErr}, readme, nil, nil)
	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, fetchErr)
	require.Zero(t, readme.calls)
}

func TestRun_ParseErrorAbortsBeforePublishing(t *testing.T) {
	bad := eventIssue(9, "Broken", "2025-03-01", "18:00")
	bad.Body = "### Date\n\n2025-03-01\n"
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(1, "Fine", "2025-03-01", "18:00"), bad}}
	readme := &fakeReadme{}
	ws := newFakeWorkspace()

	p := newTestPipeline(t, ModeAll, fetcher, readme, ws, nil)
	_, err := p.Run(context.Background())

	var perr *event.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 9, perr.IssueNumber)
	require.Zero(t, readme.calls)
	require.Empty(t, ws.published)
}

func TestRun_PagesOpensPullRequest(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(4, "Spring Meetup", "2025-04-02", "6:30 PM")}}
	ws := newFakeWorkspace()

	p := newTestPipeline(t, ModePages, fetcher, nil, ws, nil)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.PullRequest)
	require.Equal(t, 7, result.PullRequest.GetNumber())
	require.Equal(t, 1, result.PagesChanged)
	require.Equal(t, []string{"Action: Update event pages.|Update event pages"}, ws.published)

	content, err := ws.fs.Read(context.Background(), "content/events/2025-04-02--spring-meetup--4.md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "+++\n"))
	assert.Contains(t, content, "Spring Meetup")
}

func TestRun_PagesNoChangesIsSuccess(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(4, "Spring Meetup", "2025-04-02", "18:30")}}
	ws := newFakeWorkspace()
	ws.publishErr = workspace.ErrNoChanges

	p := newTestPipeline(t, ModePages, fetcher, nil, ws, nil)
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, result.PullRequest)
	require.Zero(t, result.PagesChanged)
}

func TestRun_PagesPublishErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(4, "Spring Meetup", "2025-04-02", "18:30")}}
	ws := newFakeWorkspace()
	publishErr := errors.New("422 reference already exists")
	ws.publishErr = publishErr

	p := newTestPipeline(t, ModePages, fetcher, nil, ws, nil)
	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, publishErr)
}

func TestRun_DryRunPreviewsPages(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{
		eventIssue(4, "Spring Meetup", "2025-04-02", "18:30"),
		eventIssue(5, "Summer Meetup", "2025-07-02", "18:30"),
	}}
	ws := newFakeWorkspace()
	var out bytes.Buffer

	p := newTestPipeline(t, ModePages, fetcher, nil, ws, &out)
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, ws.previewed)
	require.Empty(t, ws.published)
	require.Equal(t, 2, result.PagesChanged)
	require.Nil(t, result.PullRequest)
	require.Contains(t, out.String(), "content/events/2025-04-02--spring-meetup--4.md")
}

func TestRun_AllPublishesBoth(t *testing.T) {
	fetcher := &fakeFetcher{issues: []githubpkg.Issue{eventIssue(4, "Spring Meetup", "2025-04-02", "18:30")}}
	readme := &fakeReadme{}
	ws := newFakeWorkspace()

	p := newTestPipeline(t, ModeAll, fetcher, readme, ws, nil)
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.ReadmeChanged)
	require.NotNil(t, result.PullRequest)
	require.Equal(t, 1, readme.calls)
	require.Len(t, ws.published, 1)
}
