// Package config provides configuration management for the upcoming-events command.
//
// Configuration is assembled once per process from, in increasing precedence, built-in defaults, an optional YAML
// file, and environment variables. Command-line flags are applied on top by the command. The resulting Config is
// passed by value and not modified afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cchalm/upcoming-events/internal/event"
	"github.com/cchalm/upcoming-events/internal/render"
)

// Config holds the configuration for a run
type Config struct {
	// Repository
	Owner string `yaml:"-"`
	Repo  string `yaml:"-"`

	// Authentication: either a personal access token or GitHub App credentials
	Token             string `yaml:"-"`
	AppID             int64  `yaml:"-"`
	AppInstallationID int64  `yaml:"-"`
	AppPrivateKeyPath string `yaml:"-"`

	// Events
	Label    string `yaml:"label"`
	Timezone string `yaml:"timezone"`

	// README
	ReadmePath    string `yaml:"readme_path"`
	ReadmeBranch  string `yaml:"readme_branch"`
	SectionKey    string `yaml:"section"`
	Header        string `yaml:"header"`
	CommitMessage string `yaml:"commit_message"`

	// Pages
	PagesDir           string `yaml:"pages_dir"`
	BranchPrefix       string `yaml:"branch_prefix"`
	PagesCommitMessage string `yaml:"pages_commit_message"`
	PullRequestTitle   string `yaml:"pull_request_title"`

	// HTTP
	WaitOnRateLimit bool `yaml:"wait_on_rate_limit"`
	LogRequests     bool `yaml:"log_requests"`

	// Telemetry
	TelemetryEnabled bool   `yaml:"telemetry"`
	OTLPEndpoint     string `yaml:"otlp_endpoint"`
	PushgatewayURL   string `yaml:"pushgateway_url"`
}

// Default returns the configuration used when nothing else is specified
func Default() Config {
	return Config{
		Label:              "event",
		Timezone:           event.DefaultTimezone,
		ReadmePath:         "README.md",
		SectionKey:         "events",
		Header:             render.DefaultHeader,
		CommitMessage:      "Action: Update upcoming events.",
		PagesDir:           render.DefaultPagesDir,
		BranchPrefix:       "events/update-",
		PagesCommitMessage: "Action: Update event pages.",
		PullRequestTitle:   "Update event pages",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped if path is empty) and the environment
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := config.loadEnv(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) loadEnv() error {
	if repoName := os.Getenv("REPOSITORY_NAME"); repoName != "" {
		if err := c.SetRepository(repoName); err != nil {
			return err
		}
	}

	loadOptionalFromEnv(&c.Token, "PERSONAL_ACCESS_TOKEN")
	loadOptionalFromEnv(&c.AppPrivateKeyPath, "GITHUB_APP_PRIVATE_KEY_PATH")
	loadOptionalFromEnv(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	loadOptionalFromEnv(&c.PushgatewayURL, "PUSHGATEWAY_URL")

	parseInt := func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
	return errors.Join(
		parseOptionalFromEnv(&c.AppID, "GITHUB_APP_ID", parseInt),
		parseOptionalFromEnv(&c.AppInstallationID, "GITHUB_APP_INSTALLATION_ID", parseInt),
	)
}

// SetRepository sets Owner and Repo from an "owner/name" string
func (c *Config) SetRepository(qualifiedName string) error {
	parts := strings.Split(qualifiedName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid repository format '%s', expected owner/repo", qualifiedName)
	}
	c.Owner, c.Repo = parts[0], parts[1]
	return nil
}

// UsesApp reports whether GitHub App credentials should be used instead of a token
func (c Config) UsesApp() bool {
	return c.Token == "" && c.AppID != 0
}

// Location returns the time zone event dates and times are interpreted in
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	var errs []error
	if c.Owner == "" || c.Repo == "" {
		errs = append(errs, fmt.Errorf("missing repository: set REPOSITORY_NAME or --repo"))
	}
	if c.Token == "" && c.AppID == 0 {
		errs = append(errs, fmt.Errorf("missing credentials: set PERSONAL_ACCESS_TOKEN or GITHUB_APP_ID"))
	}
	if c.UsesApp() && (c.AppInstallationID == 0 || c.AppPrivateKeyPath == "") {
		errs = append(errs, fmt.Errorf("GitHub App auth requires GITHUB_APP_INSTALLATION_ID and GITHUB_APP_PRIVATE_KEY_PATH"))
	}
	if c.Label == "" {
		errs = append(errs, fmt.Errorf("label must not be empty"))
	}
	if c.SectionKey == "" {
		errs = append(errs, fmt.Errorf("section must not be empty"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func loadOptionalFromEnv(dest *string, key string) {
	_ = parseOptionalFromEnv(dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) error {
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}
