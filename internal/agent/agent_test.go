package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// fakeRunner replays a scripted event stream without spawning a process.
type fakeRunner struct {
	events  []StreamEvent
	stderr  string
	waitErr error

	startedPrompt string
	startedPath   string
	startedOpts   *StartOptions
	killed        bool

	out chan StreamEvent
}

func newFakeRunner(events ...StreamEvent) *fakeRunner {
	return &fakeRunner{events: events}
}

func (f *fakeRunner) Start(prompt, projectPath string, opts *StartOptions) error {
	f.startedPrompt = prompt
	f.startedPath = projectPath
	f.startedOpts = opts
	f.out = make(chan StreamEvent, len(f.events)+1)
	for _, ev := range f.events {
		f.out <- ev
	}
	close(f.out)
	return nil
}

func (f *fakeRunner) Output() <-chan StreamEvent { return f.out }
func (f *fakeRunner) Wait() error                { return f.waitErr }
func (f *fakeRunner) Kill() error                { f.killed = true; return nil }
func (f *fakeRunner) Stderr() string             { return f.stderr }

func newTestAgent(runner Runner) *Agent {
	return New(Options{
		ProjectPath: "/tmp/proj",
		NewRunner:   func(context.Context) Runner { return runner },
	})
}

func collectEvents(a *Agent) <-chan []Event {
	ch := make(chan []Event, 1)
	go func() {
		var events []Event
		for ev := range a.Events() {
			events = append(events, ev)
		}
		ch <- events
	}()
	return ch
}

func TestAgent_RunReturnsResult(t *testing.T) {
	runner := newFakeRunner(
		StreamEvent{Type: StreamEventSystem},
		StreamEvent{Type: StreamEventAssistant, Preview: "Hello"},
		StreamEvent{Type: StreamEventResult, Result: &models.RunResult{
			Result: "## Summary", DurationMS: 1500, NumTurns: 3,
		}},
	)
	a := newTestAgent(runner)
	got := collectEvents(a)

	result, err := a.Run(context.Background(), "a todo app")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Result != "## Summary" || result.NumTurns != 3 {
		t.Errorf("result = %+v", result)
	}
	if runner.startedPrompt != "a todo app" {
		t.Errorf("prompt = %q", runner.startedPrompt)
	}
	if runner.startedPath != "/tmp/proj" {
		t.Errorf("project path = %q", runner.startedPath)
	}
	if runner.startedOpts.SystemPrompt == "" {
		t.Error("system prompt was not passed to the runner")
	}

	select {
	case events := <-got:
		// One message event per stream event, no todo events.
		if len(events) != 3 {
			t.Fatalf("got %d events, want 3: %+v", len(events), events)
		}
		if events[1].MessageType != "AssistantMessage" || events[1].Preview != "Hello" {
			t.Errorf("events[1] = %+v", events[1])
		}
		if events[2].MessageType != "ResultMessage" {
			t.Errorf("events[2] = %+v", events[2])
		}
	case <-time.After(time.Second):
		t.Fatal("events channel was not closed")
	}
}

func TestAgent_RunForwardsTodos(t *testing.T) {
	todos := []models.TodoItem{
		{Content: "create tables", Status: models.TodoStatusInProgress},
	}
	runner := newFakeRunner(
		StreamEvent{Type: StreamEventAssistant, Todos: todos},
		StreamEvent{Type: StreamEventResult, Result: &models.RunResult{}},
	)
	a := newTestAgent(runner)
	got := collectEvents(a)

	if _, err := a.Run(context.Background(), "idea"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	events := <-got
	var todoEvents []Event
	for _, ev := range events {
		if ev.Kind == EventTodos {
			todoEvents = append(todoEvents, ev)
		}
	}
	if len(todoEvents) != 1 {
		t.Fatalf("got %d todo events, want 1", len(todoEvents))
	}
	if todoEvents[0].Todos[0].Content != "create tables" {
		t.Errorf("todo = %+v", todoEvents[0].Todos[0])
	}
}

func TestAgent_RunNoResult(t *testing.T) {
	runner := newFakeRunner(
		StreamEvent{Type: StreamEventAssistant, Preview: "working"},
	)
	a := newTestAgent(runner)
	go func() {
		for range a.Events() {
		}
	}()

	_, err := a.Run(context.Background(), "idea")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestAgent_RunNoResultIncludesStderr(t *testing.T) {
	runner := newFakeRunner()
	runner.stderr = "claude: command crashed\nstack trace"
	a := newTestAgent(runner)
	go func() {
		for range a.Events() {
		}
	}()

	_, err := a.Run(context.Background(), "idea")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
	if want := "claude: command crashed"; !strings.Contains(err.Error(), want) {
		t.Errorf("err = %q, want it to contain %q", err, want)
	}
}

func TestAgent_RunCancelled(t *testing.T) {
	runner := newFakeRunner()
	a := newTestAgent(runner)
	go func() {
		for range a.Events() {
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, "idea")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestAgent_RunErrorResultIsNotAnError(t *testing.T) {
	runner := newFakeRunner(
		StreamEvent{Type: StreamEventResult, Result: &models.RunResult{
			IsError: true, Result: "boom",
		}},
	)
	a := newTestAgent(runner)
	go func() {
		for range a.Events() {
		}
	}()

	result, err := a.Run(context.Background(), "idea")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.IsError || result.Result != "boom" {
		t.Errorf("result = %+v", result)
	}
}
