package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schemagen",
	Short: "Database Schema Agent",
	Long: `Schemagen turns a plain-language app idea into a PostgreSQL schema.

It spawns a Claude Code agent that plans the data model, writes numbered
migration files and seed data into your project directory, and streams its
progress into a live terminal view with per-task timing.

With no subcommand, runs a build (same as 'schemagen build').`,
	RunE:         runBuild,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addBuildFlags(rootCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
