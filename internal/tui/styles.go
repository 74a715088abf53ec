package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// statusStyle describes how one todo status renders: its bracket glyph,
// the glyph's style, and whether the row shows an elapsed duration.
// Spinner-animated statuses leave Glyph empty and take the current
// animation frame instead.
type statusStyle struct {
	Glyph        string
	Style        lipgloss.Style
	ShowDuration bool
}

// statusStyles is the single source of per-status rendering rules.
var statusStyles = map[models.TodoStatus]statusStyle{
	models.TodoStatusCompleted: {
		Glyph:        "✓",
		Style:        lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		ShowDuration: true,
	},
	models.TodoStatusInProgress: {
		Style:        lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		ShowDuration: true,
	},
	models.TodoStatusPending: {
		Glyph: " ",
		Style: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	},
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	startingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	createdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
	errorTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
