package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptCancelled indicates the user aborted the idea prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// ideaPrompt is a minimal bubbletea model wrapping a text input.
type ideaPrompt struct {
	text      textinput.Model
	submitted bool
	cancelled bool
}

func newIdeaPrompt() *ideaPrompt {
	ti := textinput.New()
	ti.Placeholder = "A recipe sharing app with ratings..."
	ti.Prompt = "Describe your idea: "
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	return &ideaPrompt{text: ti}
}

func (p *ideaPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p *ideaPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if p.text.Value() != "" {
				p.submitted = true
				return p, tea.Quit
			}
			return p, nil
		case "ctrl+c", "esc":
			p.cancelled = true
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.text, cmd = p.text.Update(msg)
	return p, cmd
}

func (p *ideaPrompt) View() string {
	if p.submitted {
		return p.text.Prompt + p.text.Value() + "\n"
	}
	return p.text.View() + "\n"
}

// PromptForIdea runs an interactive prompt and returns the entered idea.
func PromptForIdea() (string, error) {
	model := newIdeaPrompt()

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}

	prompt, ok := final.(*ideaPrompt)
	if !ok || prompt.cancelled || !prompt.submitted {
		return "", ErrPromptCancelled
	}
	return prompt.text.Value(), nil
}
