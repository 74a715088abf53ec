package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/schemagen/internal/agent"
	"github.com/ShayCichocki/schemagen/internal/api"
	"github.com/ShayCichocki/schemagen/internal/config"
	"github.com/ShayCichocki/schemagen/internal/report"
	"github.com/ShayCichocki/schemagen/internal/state"
	"github.com/ShayCichocki/schemagen/internal/tracker"
	"github.com/ShayCichocki/schemagen/internal/tui"
	"github.com/ShayCichocki/schemagen/internal/watch"
	"github.com/ShayCichocki/schemagen/pkg/models"
)

var (
	buildProjectPath string
	buildRefine      bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a database schema from an app idea",
	Long: `Generate PostgreSQL migrations and seed data for an app idea.

Prompts for a description of the application, then runs a Claude Code
agent in the project directory. The agent plans its work with a todo
list, writes numbered migration files under migrations/ and seed data
under seeds/, and finishes with a markdown summary.

While the agent runs, a live view shows each task with its status and
how long it took, the latest agent message, and a count of files
written so far.

Use --refine to tighten the idea into a structured data-modeling brief
with a single API call before the agent starts (requires
ANTHROPIC_API_KEY or AWS Bedrock credentials).`,
	RunE: runBuild,
	Args: cobra.NoArgs,
}

func init() {
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&buildProjectPath, "project-path", "p", "", "Directory to create the schema in (required)")
	cmd.Flags().BoolVar(&buildRefine, "refine", false, "Refine the idea into a data-modeling brief before running")
}

// runOutcome carries the agent's terminal result across the TUI boundary.
type runOutcome struct {
	result *models.RunResult
	err    error
}

func runBuild(cmd *cobra.Command, args []string) (retErr error) {
	// Recover from panics and report them
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in runBuild: %v", r)
		}
	}()

	if buildProjectPath == "" {
		return fmt.Errorf("required flag --project-path not set")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := agent.CheckClaudeCLI(cfg.Claude.Binary); err != nil {
		return err
	}

	projectPath, err := filepath.Abs(buildProjectPath)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}
	if _, err := os.Stat(projectPath); os.IsNotExist(err) {
		if err := os.MkdirAll(projectPath, 0755); err != nil {
			return fmt.Errorf("create project path: %w", err)
		}
	}
	fmt.Println(tui.RenderCreated(projectPath))

	idea, err := tui.PromptForIdea()
	if err != nil {
		if errors.Is(err, tui.ErrPromptCancelled) {
			fmt.Println("Cancelled.")
			return nil
		}
		return fmt.Errorf("read idea: %w", err)
	}

	// Create context with cancellation for the whole run
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	prompt := idea
	if buildRefine {
		prompt, err = refineIdea(ctx, cfg, idea)
		if err != nil {
			return err
		}
	}

	systemPrompt, err := cfg.SystemPrompt(agent.SystemPrompt())
	if err != nil {
		return fmt.Errorf("load system prompt: %w", err)
	}

	watcher, err := watch.New(projectPath)
	if err != nil {
		// The run still works without live file counts.
		fmt.Fprintf(os.Stderr, "warning: watch artifacts: %v\n", err)
		watcher = nil
	}
	defer watcher.Close()

	tr := tracker.New()
	ag := agent.New(agent.Options{
		ProjectPath:  projectPath,
		Binary:       cfg.Claude.Binary,
		Model:        cfg.Claude.Model,
		SystemPrompt: systemPrompt,
	})

	startedAt := time.Now()
	tr.Start()

	program := tea.NewProgram(tui.NewRunView(tr, watcher, cfg.TUI.TickInterval, cfg.TUI.PreviewWidth))

	// Bridge agent events into the tracker. The channel closes when the
	// run finishes, so this goroutine always exits.
	go func() {
		for ev := range ag.Events() {
			switch ev.Kind {
			case agent.EventTodos:
				tr.RecordTodos(ev.Todos)
			case agent.EventMessage:
				tr.RecordMessage(ev.MessageType, ev.Preview)
			}
		}
	}()

	outcomeCh := make(chan runOutcome, 1)
	go func() {
		result, runErr := ag.Run(ctx, prompt)
		outcomeCh <- runOutcome{result: result, err: runErr}
		program.Send(tui.DoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-outcomeCh
		if errors.Is(err, tea.ErrInterrupted) {
			fmt.Println()
			color.Yellow("Run cancelled.")
			return nil
		}
		return fmt.Errorf("run display: %w", err)
	}

	outcome := <-outcomeCh
	files := watcher.Files()
	watcher.Close()

	if outcome.err != nil {
		if errors.Is(outcome.err, context.Canceled) {
			fmt.Println()
			color.Yellow("Run cancelled.")
			return nil
		}
		return outcome.err
	}

	result := outcome.result
	fmt.Println()
	fmt.Println(tui.RenderResult(result, 80))
	fmt.Println()
	fmt.Println(tui.RenderStats(result))
	if artifacts := tui.RenderArtifacts(files); artifacts != "" {
		fmt.Println(artifacts)
	}

	record := &models.RunRecord{
		ID:            uuid.NewString(),
		ProjectPath:   projectPath,
		Idea:          idea,
		StartedAt:     startedAt,
		DurationMS:    result.DurationMS,
		NumTurns:      result.NumTurns,
		TotalCostUSD:  result.TotalCostUSD,
		IsError:       result.IsError,
		ArtifactCount: len(files),
	}
	if err := recordRun(record); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
	}
	if err := report.Write(projectPath, record, files); err != nil {
		fmt.Fprintf(os.Stderr, "warning: write run report: %v\n", err)
	}

	return nil
}

// refineIdea makes one API call that tightens the idea into a structured
// data-modeling brief and prepends it to the agent prompt.
func refineIdea(ctx context.Context, cfg *config.Config, idea string) (string, error) {
	apiKey := ""
	if !cfg.Refine.UseAWSBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return "", fmt.Errorf("refine requires an API key: %w", err)
		}
		apiKey = key
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         cfg.Refine.Model,
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Refine.UseAWSBedrock,
		AWSRegion:     cfg.Refine.AWSRegion,
		AWSProfile:    cfg.Refine.AWSProfile,
	})
	if err != nil {
		return "", fmt.Errorf("create refine client: %w", err)
	}

	fmt.Println("Refining idea...")
	brief, err := api.NewRefiner(client).Refine(ctx, idea)
	if err != nil {
		return "", err
	}
	return brief, nil
}

func recordRun(record *models.RunRecord) error {
	db, err := state.OpenGlobal()
	if err != nil {
		return err
	}
	defer db.Close()
	return db.RecordRun(record)
}
