package main

import (
	"github.com/spf13/cobra"

	"movers/internal/version"
)

var (
	// configDirFlag is the CLI --config-dir flag value
	configDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "movers",
	Short: "movers - status-transition dashboard backend",
	Long: `movers proxies an issue-tracker search API, aggregates per-issue
status-change history into per-user counts, and serves the dashboard that
displays them.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("movers version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"Directory containing movers.yaml (default: current directory)")
}
