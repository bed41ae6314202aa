package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"

	"github.com/cchalm/upcoming-events/internal/telemetry"
	"github.com/cchalm/upcoming-events/internal/transport"
)

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx, cancel
}

// createGithubClient creates a client authenticated with the personal access token, or as a GitHub App installation
// when no token is configured
func createGithubClient(ctx context.Context) (*github.Client, error) {
	var base http.RoundTripper = http.DefaultTransport
	if config.WaitOnRateLimit {
		base = transport.WithRateLimiting(base)
	}
	if config.LogRequests {
		base = transport.WithLogging(base)
	}

	if config.UsesApp() {
		log.Printf("Authenticating as GitHub App %d, installation %d", config.AppID, config.AppInstallationID)
		tr, err := ghinstallation.NewKeyFromFile(base, config.AppID, config.AppInstallationID, config.AppPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
		}
		return github.NewClient(&http.Client{Transport: tr}), nil
	}

	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: tokenSource, Base: base},
	}
	return github.NewClient(httpClient), nil
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:        config.TelemetryEnabled,
		OTLPEndpoint:   config.OTLPEndpoint,
		PushgatewayURL: config.PushgatewayURL,
		ServiceVersion: version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}
