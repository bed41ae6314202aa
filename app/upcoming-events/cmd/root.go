package cmd

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configpkg "github.com/cchalm/upcoming-events/internal/config"
)

var (
	config     configpkg.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "upcoming-events",
	Short: "Publish upcoming events from GitHub issues",
	Long: `upcoming-events reads the open event announcement issues of a repository, orders them by date
and publishes them as a section of the README and as one content page per event.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) error {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config, err = configpkg.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
}
