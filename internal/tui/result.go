package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// defaultErrorText stands in when the agent fails without a message.
const defaultErrorText = "Agent execution failed"

// RenderResult renders the terminal outcome of a run. Errors get a red
// panel with the plain message; successful runs get the result text as
// rendered markdown, or a plain success line when no text was returned.
func RenderResult(result *models.RunResult, width int) string {
	if width <= 0 {
		width = 80
	}

	if result.IsError {
		text := result.Result
		if text == "" {
			text = defaultErrorText
		}
		panel := errorTitleStyle.Render("Error") + "\n" + text
		return errorPanelStyle.Width(width - 2).Render(panel)
	}

	if result.Result == "" {
		return successStyle.Render("Success!")
	}

	rendered, err := renderMarkdown(result.Result, width)
	if err != nil {
		// Fall back to the raw text rather than hiding the result.
		return result.Result
	}
	return rendered
}

// renderMarkdown renders markdown for terminal display.
func renderMarkdown(text string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// FormatStats builds the final stats line: duration and turn count, plus
// cost when the agent reported one.
func FormatStats(result *models.RunResult) string {
	stats := fmt.Sprintf("Duration: %.1fs | Turns: %d",
		float64(result.DurationMS)/1000.0, result.NumTurns)
	if result.TotalCostUSD > 0 {
		stats += fmt.Sprintf(" | Cost: $%.4f", result.TotalCostUSD)
	}
	return stats
}

// RenderStats renders the stats line in the dim footer style.
func RenderStats(result *models.RunResult) string {
	return dimStyle.Render(FormatStats(result))
}

// RenderCreated renders the green confirmation that the project directory
// is ready.
func RenderCreated(path string) string {
	return createdStyle.Render(path + " created")
}

// RenderArtifacts lists the files the agent wrote during the run.
func RenderArtifacts(files []string) string {
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render("Files created:"))
	for _, f := range files {
		b.WriteString("\n  ")
		b.WriteString(f)
	}
	return b.String()
}
