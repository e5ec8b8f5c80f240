// Package gemini provides an LLM service adapter for Google Gemini with
// function calling.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string
}

// LLMService provides tool-calling completions using the Gemini API.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &LLMService{client: client, model: cfg.Model}, nil
}

// Complete sends the conversation and returns text or function calls.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	model.Tools = toTools(req.Tools)

	contents := toContents(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: %w: no messages", domain.ErrInvalidInput)
	}
	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]

	resp, err := chat.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	return fromResponse(resp)
}

// toContents maps messages to Gemini turns. Tool results are sent as
// function responses in a user turn.
func toContents(msgs []domain.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, c := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: c.Name, Args: c.Arguments})
			}
			out = append(out, &genai.Content{Role: "model", Parts: parts})
		case domain.RoleTool:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{
				genai.FunctionResponse{Name: m.ToolName, Response: map[string]any{"result": m.Content}},
			}})
		default:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	return out
}

func toTools(defs []domain.ToolDefinition) []*genai.Tool {
	if len(defs) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(defs))
	for i, d := range defs {
		props := make(map[string]*genai.Schema, len(d.Parameters))
		for _, p := range d.Parameters {
			props[p.Name] = &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
		}
		decls[i] = &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   d.Required(),
			},
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func schemaType(t domain.ParameterType) genai.Type {
	if t == domain.ParameterInteger {
		return genai.TypeInteger
	}
	return genai.TypeString
}

func fromResponse(resp *genai.GenerateContentResponse) (*driven.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}
	cand := resp.Candidates[0]
	completion := &driven.Completion{StopReason: driven.StopEndTurn}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				completion.Text += string(p)
			case genai.FunctionCall:
				completion.ToolCalls = append(completion.ToolCalls, domain.ToolCall{
					ID:        fmt.Sprintf("call_%d", len(completion.ToolCalls)),
					Name:      p.Name,
					Arguments: p.Args,
				})
			}
		}
	}
	switch {
	case len(completion.ToolCalls) > 0:
		completion.StopReason = driven.StopToolUse
	case cand.FinishReason == genai.FinishReasonMaxTokens:
		completion.StopReason = driven.StopMaxTokens
	}
	return completion, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, which validates the key without
// running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (s *LLMService) Close() error {
	return s.client.Close()
}
