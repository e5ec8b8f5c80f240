package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// LLMService is a chat model that can request tool invocations.
// This is an optional service - when nil, questions cannot be answered
// but search and ingestion keep working.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o)
//   - Ollama (local models with tool support)
//   - Gemini
type LLMService interface {
	// Complete sends one request and returns either text or tool calls.
	// A transport or provider failure is returned as an error; it is never retried.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is a provider-neutral chat request.
type CompletionRequest struct {
	// System is the system prompt, including any formatted history.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []domain.Message

	// Tools are offered to the model. Empty means the model must answer in text.
	Tools []domain.ToolDefinition

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// StopReason says why the model stopped generating.
type StopReason string

// Stop reasons.
const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// Completion is the model's reply. It carries text, tool calls, or both;
// tool calls take precedence when present.
type Completion struct {
	// Text is the assistant's text output.
	Text string

	// ToolCalls are the structured tool requests, in the order the model emitted them.
	ToolCalls []domain.ToolCall

	// StopReason is the provider's stop reason mapped to a neutral value.
	StopReason StopReason
}

// WantsTool reports whether the completion requests at least one tool call.
func (c *Completion) WantsTool() bool {
	return c != nil && len(c.ToolCalls) > 0
}
