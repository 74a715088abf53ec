package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// refineSystemPrompt steers the refinement call: tighten the idea into a
// data-modeling brief without inventing product scope.
const refineSystemPrompt = `You help prepare application ideas for a database
schema designer. Rewrite the user's idea as a concise brief: the core
entities, their relationships, and any constraints the idea implies. Keep
it under 200 words, plain text. Do not add features the user did not
mention and do not write any SQL.`

// Refiner turns a raw idea into a structured brief via one Messages call.
type Refiner struct {
	client *Client
}

// NewRefiner creates a Refiner backed by the given client.
func NewRefiner(client *Client) *Refiner {
	return &Refiner{client: client}
}

// Refine returns the refined brief for the user's idea. The original idea
// text is preserved in the returned brief so nothing the user said is lost.
func (r *Refiner) Refine(ctx context.Context, idea string) (string, error) {
	resp, err := r.client.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: refineSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(idea)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("refine idea: %w", err)
	}

	var brief strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			brief.WriteString(variant.Text)
		}
	}

	if brief.Len() == 0 {
		// An empty refinement is not worth failing the run over.
		return idea, nil
	}

	return FormatBrief(idea, brief.String()), nil
}

// FormatBrief combines the original idea with the refined brief into the
// prompt handed to the agent.
func FormatBrief(idea, brief string) string {
	return fmt.Sprintf("%s\n\nData-modeling brief:\n%s", strings.TrimSpace(idea), strings.TrimSpace(brief))
}
