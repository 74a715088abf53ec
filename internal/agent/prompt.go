package agent

import _ "embed"

// systemPrompt is the built-in instruction set for the migration agent.
// Config may substitute a custom prompt file.
//
//go:embed system-prompt.md
var systemPrompt string

// SystemPrompt returns the built-in system prompt.
func SystemPrompt() string {
	return systemPrompt
}
