package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // Event time zones must load on hosts without a zoneinfo database

	"github.com/cchalm/upcoming-events/app/upcoming-events/cmd"
)

// Version information set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, GitCommit, BuildTime)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
