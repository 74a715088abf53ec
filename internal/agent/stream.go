package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// StreamEventType represents the type of stream event from Claude Code.
type StreamEventType string

const (
	// StreamEventSystem indicates a system message.
	StreamEventSystem StreamEventType = "system"
	// StreamEventAssistant indicates an assistant message.
	StreamEventAssistant StreamEventType = "assistant"
	// StreamEventUser indicates a user message.
	StreamEventUser StreamEventType = "user"
	// StreamEventResult indicates the final result.
	StreamEventResult StreamEventType = "result"
	// StreamEventError indicates an error.
	StreamEventError StreamEventType = "error"
)

// previewLimit bounds the single-line message preview extracted from
// assistant text blocks.
const previewLimit = 60

// StreamEvent represents a parsed event from Claude Code's stream-json output.
type StreamEvent struct {
	// Type is the event type.
	Type StreamEventType `json:"type"`
	// Preview is a single-line excerpt of the first text block, when the
	// event carries assistant text.
	Preview string `json:"preview,omitempty"`
	// Todos holds the full todo snapshot when the event contains a
	// TodoWrite tool call. Nil otherwise.
	Todos []models.TodoItem `json:"todos,omitempty"`
	// Result holds the terminal run outcome when Type is StreamEventResult.
	Result *models.RunResult `json:"result,omitempty"`
	// Error contains error details when Type is StreamEventError.
	Error string `json:"error,omitempty"`
	// Raw contains the original JSON for debugging.
	Raw json.RawMessage `json:"-"`
}

// MessageLabel returns the message descriptor reported to the tracker,
// mirroring the agent SDK's message class names.
func (e StreamEvent) MessageLabel() string {
	switch e.Type {
	case StreamEventSystem:
		return "SystemMessage"
	case StreamEventAssistant:
		return "AssistantMessage"
	case StreamEventUser:
		return "UserMessage"
	case StreamEventResult:
		return "ResultMessage"
	default:
		return string(e.Type)
	}
}

// todoWriteTool is the one tool invocation inspected for todo extraction.
// Every other tool call passes through without side effect.
const todoWriteTool = "TodoWrite"

// contentBlock is one element of an assistant message's content array.
type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// assistantPayload is the envelope of an assistant stream event.
type assistantPayload struct {
	Message struct {
		Content []contentBlock `json:"content"`
	} `json:"message"`
	// Some stream formats place content at the top level.
	Content []contentBlock `json:"content"`
}

// resultPayload is the envelope of a result stream event.
type resultPayload struct {
	IsError      bool    `json:"is_error"`
	Result       string  `json:"result"`
	DurationMS   int64   `json:"duration_ms"`
	NumTurns     int     `json:"num_turns"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// todoWriteInput is the input schema of a TodoWrite tool call.
type todoWriteInput struct {
	Todos []models.TodoItem `json:"todos"`
}

// parseStreamEvent parses one NDJSON line into a StreamEvent.
func parseStreamEvent(data []byte) (StreamEvent, error) {
	// Message is an object on assistant events and a plain string on some
	// error events, so it stays raw until the type is known.
	var envelope struct {
		Type    string          `json:"type"`
		Error   string          `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return StreamEvent{}, fmt.Errorf("unmarshal json: %w", err)
	}

	event := StreamEvent{
		Type: StreamEventType(envelope.Type),
		Raw:  append(json.RawMessage(nil), data...),
	}

	switch event.Type {
	case StreamEventAssistant:
		var payload assistantPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return StreamEvent{}, fmt.Errorf("unmarshal assistant event: %w", err)
		}
		blocks := payload.Message.Content
		if len(blocks) == 0 {
			blocks = payload.Content
		}
		event.Preview = extractPreview(blocks)
		event.Todos = extractTodos(blocks)

	case StreamEventResult:
		var payload resultPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return StreamEvent{}, fmt.Errorf("unmarshal result event: %w", err)
		}
		event.Result = &models.RunResult{
			IsError:      payload.IsError,
			Result:       payload.Result,
			DurationMS:   payload.DurationMS,
			NumTurns:     payload.NumTurns,
			TotalCostUSD: payload.TotalCostUSD,
		}

	case StreamEventError:
		event.Error = envelope.Error
		if event.Error == "" {
			var msg string
			if json.Unmarshal(envelope.Message, &msg) == nil {
				event.Error = msg
			}
		}
	}

	return event, nil
}

// extractPreview returns a single-line excerpt of the first text block,
// truncated to previewLimit characters.
func extractPreview(blocks []contentBlock) string {
	for _, block := range blocks {
		if block.Type != "text" || block.Text == "" {
			continue
		}
		line := block.Text
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if runes := []rune(line); len(runes) > previewLimit {
			line = string(runes[:previewLimit])
		}
		return line
	}
	return ""
}

// extractTodos returns the todo snapshot from the first TodoWrite tool_use
// block, or nil when the event contains none. Malformed todo entries are
// tolerated: missing fields fall back to pending status and empty content.
func extractTodos(blocks []contentBlock) []models.TodoItem {
	for _, block := range blocks {
		if block.Type != "tool_use" || block.Name != todoWriteTool {
			continue
		}
		var input todoWriteInput
		if err := json.Unmarshal(block.Input, &input); err != nil {
			// A TodoWrite with an unreadable input is treated as absent
			// rather than crashing the stream consumer.
			return nil
		}
		todos := make([]models.TodoItem, len(input.Todos))
		for i, todo := range input.Todos {
			todos[i] = todo.Normalize()
		}
		return todos
	}
	return nil
}
