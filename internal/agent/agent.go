package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// ErrNoResult indicates the agent's stream ended without ever producing a
// terminal result. This is fatal for the invocation.
var ErrNoResult = errors.New("no result message received from agent")

// Runner defines the interface for Claude execution backends. It is
// implemented by ClaudeProcess and by fakes in tests.
type Runner interface {
	// Start launches Claude with the given prompt and project directory.
	Start(prompt, projectPath string, opts *StartOptions) error
	// Output returns the stream event channel, closed when execution ends.
	Output() <-chan StreamEvent
	// Wait blocks until execution completes.
	Wait() error
	// Kill terminates execution immediately.
	Kill() error
	// Stderr returns captured stderr output.
	Stderr() string
}

// Verify ClaudeProcess implements Runner at compile time.
var _ Runner = (*ClaudeProcess)(nil)

// EventKind discriminates progress notifications.
type EventKind string

const (
	// EventTodos carries a full todo snapshot from a TodoWrite call.
	EventTodos EventKind = "todos"
	// EventMessage carries a message descriptor (type label + preview).
	EventMessage EventKind = "message"
)

// Event is one progress notification from a running agent. Events are
// delivered over a bounded channel; when the consumer falls behind,
// stale events are dropped rather than blocking the agent.
type Event struct {
	Kind        EventKind
	Todos       []models.TodoItem
	MessageType string
	Preview     string
}

// Options configures an Agent.
type Options struct {
	// ProjectPath is the directory where migrations and seeds are created.
	ProjectPath string
	// Binary overrides the claude executable name.
	Binary string
	// Model overrides the CLI's default model.
	Model string
	// SystemPrompt overrides the embedded system prompt.
	SystemPrompt string
	// NewRunner overrides the execution backend, for tests.
	NewRunner func(ctx context.Context) Runner
}

// Agent runs one end-to-end Claude invocation for a single user idea and
// bridges its stream into progress events.
type Agent struct {
	opts   Options
	events chan Event
}

// New creates an Agent for the given options.
func New(opts Options) *Agent {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt()
	}
	if opts.NewRunner == nil {
		opts.NewRunner = func(ctx context.Context) Runner {
			return NewClaudeProcess(ctx)
		}
	}
	return &Agent{
		opts:   opts,
		events: make(chan Event, 64),
	}
}

// Events returns the progress notification channel. It is closed when Run
// returns, so consumers can range over it.
func (a *Agent) Events() <-chan Event {
	return a.events
}

// Run executes the agent with the user's idea and blocks until the run
// produces its terminal result. The stream ending without a result is an
// error; an agent-reported failure is not (it surfaces via the result's
// IsError flag). Run must be called at most once per Agent.
func (a *Agent) Run(ctx context.Context, userIdea string) (*models.RunResult, error) {
	defer close(a.events)

	runner := a.opts.NewRunner(ctx)

	err := runner.Start(userIdea, a.opts.ProjectPath, &StartOptions{
		Binary:       a.opts.Binary,
		Model:        a.opts.Model,
		SystemPrompt: a.opts.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("start agent: %w", err)
	}

	var result *models.RunResult
	for event := range runner.Output() {
		if event.Type == StreamEventError {
			// Parse errors and stderr noise are not message units.
			continue
		}

		a.notify(Event{
			Kind:        EventMessage,
			MessageType: event.MessageLabel(),
			Preview:     event.Preview,
		})

		if event.Todos != nil {
			a.notify(Event{Kind: EventTodos, Todos: event.Todos})
		}

		if event.Result != nil {
			result = event.Result
			break
		}
	}

	waitErr := runner.Wait()

	if result == nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("agent run cancelled: %w", ctx.Err())
		}
		if stderr := runner.Stderr(); stderr != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoResult, firstLine(stderr))
		}
		if waitErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoResult, waitErr)
		}
		return nil, ErrNoResult
	}

	return result, nil
}

// notify performs a fire-and-forget send: the agent's own processing is
// never delayed by a slow or absent consumer.
func (a *Agent) notify(event Event) {
	select {
	case a.events <- event:
	default:
	}
}

// firstLine returns the first non-empty line of s, for compact error text.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return strings.TrimSpace(s)
}
