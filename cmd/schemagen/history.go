package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/schemagen/internal/state"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past schema generation runs",
	Long: `List past runs recorded in the global run history.

Shows when each run started, how long the agent took, how many turns it
used, the cost when reported, and the idea it was given. Failed runs are
marked with a red cross.`,
	RunE: runHistory,
	Args: cobra.NoArgs,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().DurationVar(&historyPurge, "purge-older-than", 0, "Delete runs older than this duration (e.g. 720h) before listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := state.GlobalDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet. Run 'schemagen build -p <path>' to start.")
		return nil
	}

	db, err := state.OpenGlobal()
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer db.Close()

	if historyPurge > 0 {
		n, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return fmt.Errorf("purge old runs: %w", err)
		}
		if n > 0 {
			fmt.Printf("Purged %d old run(s).\n\n", n)
		}
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		mark := color.GreenString("✓")
		if r.IsError {
			mark = color.RedString("✗")
		}
		stats := fmt.Sprintf("%.1fs, %d turns", float64(r.DurationMS)/1000.0, r.NumTurns)
		if r.TotalCostUSD > 0 {
			stats += fmt.Sprintf(", $%.4f", r.TotalCostUSD)
		}
		if r.ArtifactCount > 0 {
			stats += fmt.Sprintf(", %d files", r.ArtifactCount)
		}
		fmt.Printf("%s %s  %s\n", mark, r.StartedAt.Local().Format("2006-01-02 15:04"), truncateIdea(r.Idea))
		fmt.Printf("  %s\n", stats)
		fmt.Printf("  %s\n", r.ProjectPath)
	}
	return nil
}

func truncateIdea(idea string) string {
	const max = 60
	runes := []rune(idea)
	if len(runes) <= max {
		return idea
	}
	return string(runes[:max-3]) + "..."
}
