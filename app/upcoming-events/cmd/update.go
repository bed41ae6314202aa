package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cchalm/upcoming-events/internal/filesystem"
	githubpkg "github.com/cchalm/upcoming-events/internal/github"
	"github.com/cchalm/upcoming-events/internal/pipeline"
	"github.com/cchalm/upcoming-events/internal/preview"
	"github.com/cchalm/upcoming-events/internal/readme"
	"github.com/cchalm/upcoming-events/internal/workspace"
)

var updateFlags struct {
	mode   string
	dryRun bool
	repo   string
	label  string

	waitOnRateLimit bool
	logRequests     bool
	telemetry       bool
	pushgatewayURL  string
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Publish the current list of upcoming events",
	Long: `Fetches every open issue carrying the event label, parses the announcement fields out of each issue
body and publishes the events sorted by date. In readme mode the managed section of the README is rewritten in
place. In pages mode one content page per event is committed to a new branch and offered as a pull request.`,
	PreRunE: applyUpdateFlags,
	RunE:    runUpdate,
}

func init() {
	flags := updateCmd.Flags()
	flags.StringVar(&updateFlags.mode, "mode", string(pipeline.ModeReadme), "What to publish: readme, pages or all")
	flags.BoolVar(&updateFlags.dryRun, "dry-run", false, "Print a diff of what would change instead of writing")
	flags.StringVar(&updateFlags.repo, "repo", "", "Repository name in the format 'owner/repo' (overrides REPOSITORY_NAME)")
	flags.StringVar(&updateFlags.label, "label", "", "Label that marks event announcement issues")
	flags.BoolVar(&updateFlags.waitOnRateLimit, "wait-on-rate-limit", false, "Wait and retry when GitHub responds 429 with a Retry-After header")
	flags.BoolVar(&updateFlags.logRequests, "log-requests", false, "Log every GitHub API request")
	flags.BoolVar(&updateFlags.telemetry, "telemetry", false, "Export pipeline traces over OTLP")
	flags.StringVar(&updateFlags.pushgatewayURL, "pushgateway", "", "Prometheus Pushgateway URL for run metrics")

	rootCmd.AddCommand(updateCmd)
}

// applyUpdateFlags layers the flags that were set on top of the loaded configuration
func applyUpdateFlags(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("wait-on-rate-limit") {
		config.WaitOnRateLimit = updateFlags.waitOnRateLimit
	}
	if flags.Changed("log-requests") {
		config.LogRequests = updateFlags.logRequests
	}
	if flags.Changed("telemetry") {
		config.TelemetryEnabled = updateFlags.telemetry
	}
	if flags.Changed("pushgateway") {
		config.PushgatewayURL = updateFlags.pushgatewayURL
	}
	if updateFlags.repo != "" {
		if err := config.SetRepository(updateFlags.repo); err != nil {
			return err
		}
	}
	if updateFlags.label != "" {
		config.Label = updateFlags.label
	}

	return config.Validate()
}

func runUpdate(cmd *cobra.Command, args []string) error {
	mode, err := pipeline.ParseMode(updateFlags.mode)
	if err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	log.Printf("Updating upcoming events for %s/%s (mode %s)", config.Owner, config.Repo, mode)

	tel, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// Flush with a fresh context so an interrupted run still reports
		if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil {
			log.Printf("Failed to shut down telemetry: %v", shutdownErr)
		}
	}()

	client, err := createGithubClient(ctx)
	if err != nil {
		return err
	}

	defaultBranch, err := githubpkg.DefaultBranch(ctx, client.Repositories, config.Owner, config.Repo)
	if err != nil {
		return err
	}

	var dryRunOutput io.Writer
	if updateFlags.dryRun {
		dryRunOutput = os.Stdout
	}

	var (
		readmeUpdater pipeline.ReadmeUpdater
		readmePreview *filesystem.MemDiffFileSystem
		ws            workspace.Workspace
	)
	if mode.IncludesReadme() {
		branch := config.ReadmeBranch
		if branch == "" {
			branch = defaultBranch
		}
		if updateFlags.dryRun {
			readmePreview = filesystem.NewMemDiffFileSystem(
				filesystem.NewGithubReadOnlyFileSystem(client.Repositories, config.Owner, config.Repo, branch),
			)
			readmeUpdater = readme.NewUpdater(readmePreview, config.ReadmePath, config.SectionKey)
		} else {
			fs := filesystem.NewGithubFileSystem(client.Repositories, config.Owner, config.Repo, branch, config.CommitMessage)
			readmeUpdater = readme.NewUpdater(fs, config.ReadmePath, config.SectionKey)
		}
	}
	if mode.IncludesPages() {
		reviewBranch := workspace.ReviewBranchName(config.BranchPrefix, tel.RunID)
		ws = workspace.NewRemoteWorkspace(client, config.Owner, config.Repo, defaultBranch, reviewBranch)
	}

	p, err := pipeline.New(
		config,
		mode,
		githubpkg.NewIssueFetcher(client.Issues),
		readmeUpdater,
		ws,
		tel,
		dryRunOutput,
	)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to update events: %w", err)
	}

	if readmePreview != nil {
		n, err := preview.Changelist(ctx, os.Stdout, readmePreview.Base(), readmePreview.GetChangelist())
		if err != nil {
			return fmt.Errorf("failed to preview README: %w", err)
		}
		log.Printf("Dry run: %d README file(s) would change", n)
	}

	reportResult(mode, result)
	return nil
}

func reportResult(mode pipeline.Mode, result pipeline.Result) {
	log.Printf("Published %d upcoming event(s)", len(result.Records))
	if mode.IncludesReadme() && !updateFlags.dryRun {
		if result.ReadmeChanged {
			log.Printf("README updated")
		} else {
			log.Printf("README already up to date")
		}
	}
	if result.PullRequest != nil {
		log.Printf("Opened pull request #%d: %s", result.PullRequest.GetNumber(), result.PullRequest.GetHTMLURL())
	}
}
