package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"REPOSITORY_NAME",
		"PERSONAL_ACCESS_TOKEN",
		"GITHUB_APP_ID",
		"GITHUB_APP_INSTALLATION_ID",
		"GITHUB_APP_PRIVATE_KEY_PATH",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
		"PUSHGATEWAY_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), config)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPOSITORY_NAME", "socal/nug")
	t.Setenv("PERSONAL_ACCESS_TOKEN", "secret")

	config, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "socal", config.Owner)
	require.Equal(t, "nug", config.Repo)
	require.Equal(t, "secret", config.Token)
	require.False(t, config.UsesApp())
	require.NoError(t, config.Validate())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPOSITORY_NAME", "socal/nug")

	path := filepath.Join(t.TempDir(), "events.yaml")
	err := os.WriteFile(path, []byte("label: meetup\nheader: \"## Meetups\"\ntimezone: America/New_York\nwait_on_rate_limit: true\n"), 0o644)
	require.NoError(t, err)

	config, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "meetup", config.Label)
	require.Equal(t, "## Meetups", config.Header)
	require.Equal(t, "America/New_York", config.Timezone)
	require.True(t, config.WaitOnRateLimit)
	require.Equal(t, "events", config.SectionKey)
	require.Equal(t, "nug", config.Repo)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidRepository(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPOSITORY_NAME", "just-a-name")

	_, err := Load("")
	require.ErrorContains(t, err, "expected owner/repo")
}

func TestLoad_InvalidAppID(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_APP_ID", "abc")

	_, err := Load("")
	require.ErrorContains(t, err, "GITHUB_APP_ID")
}

func TestValidate_MissingEverything(t *testing.T) {
	err := Default().Validate()
	require.ErrorContains(t, err, "missing repository")
	require.ErrorContains(t, err, "missing credentials")
}

func TestValidate_AppCredentials(t *testing.T) {
	config := Default()
	config.Owner, config.Repo = "socal", "nug"
	config.AppID = 12

	require.True(t, config.UsesApp())
	require.ErrorContains(t, config.Validate(), "GITHUB_APP_INSTALLATION_ID")

	config.AppInstallationID = 34
	config.AppPrivateKeyPath = "/keys/app.pem"
	require.NoError(t, config.Validate())
}

func TestValidate_BadTimezone(t *testing.T) {
	config := Default()
	config.Owner, config.Repo, config.Token = "socal", "nug", "secret"
	config.Timezone = "Mars/Olympus_Mons"

	require.ErrorContains(t, config.Validate(), "invalid timezone")
}
