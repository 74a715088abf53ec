// Package tui provides the terminal user interface for schemagen: the
// live run view, the idea prompt, and final result rendering.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/schemagen/internal/tracker"
	"github.com/ShayCichocki/schemagen/pkg/models"
)

// doneGlyph replaces the animation frame in the final render so the last
// visible state is never a mid-animation frame.
const doneGlyph = "✓"

// waitingPlaceholder is shown until the first message notification arrives.
const waitingPlaceholder = "Waiting for response..."

// ArtifactCounter reports how many artifact files have been observed.
// Implemented by watch.Watcher; nil-safe by contract.
type ArtifactCounter interface {
	Count() int
}

// TickMsg drives the fixed-cadence render loop.
type TickMsg time.Time

// DoneMsg signals that the agent run finished; the view performs one
// final render and quits.
type DoneMsg struct{}

// RunView is the bubbletea model for the live run display. It is a pure
// reader of tracker state: every tick it re-renders from whatever the
// event bridge has recorded so far.
type RunView struct {
	tracker   *tracker.Tracker
	artifacts ArtifactCounter

	interval     time.Duration
	previewWidth int

	frames []string
	frame  int
	done   bool
}

// NewRunView creates a RunView polling the given tracker. artifacts may
// be nil.
func NewRunView(tr *tracker.Tracker, artifacts ArtifactCounter, interval time.Duration, previewWidth int) *RunView {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	if previewWidth <= 0 {
		previewWidth = 70
	}
	return &RunView{
		tracker:      tr,
		artifacts:    artifacts,
		interval:     interval,
		previewWidth: previewWidth,
		frames:       spinner.Dot.Frames,
	}
}

// Init schedules the first tick.
func (v *RunView) Init() tea.Cmd {
	return v.tick()
}

// tick emits a TickMsg after the configured interval.
func (v *RunView) tick() tea.Cmd {
	return tea.Tick(v.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles tick, completion, and interrupt messages. Ctrl-C arrives
// as key input while the program owns the terminal; it is surfaced as an
// interrupt so the driver can cancel the run and report a cancelled
// outcome.
func (v *RunView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return v, tea.Interrupt
		}
		return v, nil
	case TickMsg:
		if v.done {
			return v, nil
		}
		v.frame = (v.frame + 1) % len(v.frames)
		return v, v.tick()
	case DoneMsg:
		v.done = true
		return v, tea.Quit
	}
	return v, nil
}

// View renders one frame from current tracker state.
func (v *RunView) View() string {
	var b strings.Builder

	glyph := v.frames[v.frame]
	if v.done {
		glyph = doneGlyph
	}

	b.WriteString(v.headerLine())
	b.WriteString("\n\n")

	todos := v.tracker.Snapshot()
	if len(todos) == 0 {
		b.WriteString(startingStyle.Render(glyph + " Starting agent..."))
		b.WriteString("\n")
	} else {
		for i, todo := range todos {
			b.WriteString(v.todoLine(i, todo, glyph))
			b.WriteString("\n")
		}
	}

	if v.artifacts != nil {
		if n := v.artifacts.Count(); n > 0 {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("%d file(s) written", n)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// headerLine renders overall elapsed time plus the latest message preview.
func (v *RunView) headerLine() string {
	elapsed := v.tracker.Elapsed().Seconds()

	_, preview := v.tracker.Message()
	if preview == "" {
		preview = waitingPlaceholder
	}
	if runes := []rune(preview); len(runes) > v.previewWidth {
		preview = string(runes[:v.previewWidth])
	}

	return headerStyle.Render(fmt.Sprintf("Agent Execution (%.1fs) - ", elapsed)) +
		dimStyle.Render(preview)
}

// todoLine renders one task row: status glyph, content, and elapsed
// duration for started or finished tasks.
func (v *RunView) todoLine(i int, todo models.TodoItem, animGlyph string) string {
	style, ok := statusStyles[todo.Status]
	if !ok {
		style = statusStyles[models.TodoStatusPending]
	}

	glyph := style.Glyph
	if glyph == "" {
		glyph = animGlyph
	}

	line := style.Style.Render("["+glyph+"]") + " " + todo.Content
	if style.ShowDuration {
		line += " " + dimStyle.Render(fmt.Sprintf("(%.1fs)", v.tracker.ElapsedFor(i).Seconds()))
	}
	return line
}
