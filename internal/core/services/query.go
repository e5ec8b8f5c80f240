package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Generation defaults.
const (
	DefaultMaxTokens   = 800
	DefaultTemperature = 0.0
)

// modelFailureAnswer is returned to the user when the model cannot be reached.
const modelFailureAnswer = "Sorry, I couldn't get an answer from the language model right now. Please try again in a moment."

// errEmptyAnswer is returned when the model ends the exchange without text.
var errEmptyAnswer = errors.New("model returned no answer text")

// fallbackSystemPrompt is used when no prompt store is configured.
const fallbackSystemPrompt = "You are an assistant for questions about course materials. " +
	"Use the search tool only for questions about specific course content. " +
	"Answer general questions directly. Be brief and accurate."

// QueryService answers questions with a bounded tool-calling loop:
// one model call with tools, at most one tool execution, and a final
// model call without tools.
type QueryService struct {
	llm         driven.LLMService
	tools       *ToolRegistry
	history     driven.HistoryStore
	prompts     driven.PromptStore
	metrics     driven.MetricsRecorder
	maxTokens   int
	temperature float64
}

// NewQueryService creates a query service. history and prompts are optional.
func NewQueryService(
	llm driven.LLMService,
	tools *ToolRegistry,
	history driven.HistoryStore,
	prompts driven.PromptStore,
) *QueryService {
	if tools == nil {
		tools = NewToolRegistry()
	}
	return &QueryService{
		llm:         llm,
		tools:       tools,
		history:     history,
		prompts:     prompts,
		metrics:     driven.NopMetrics{},
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
}

// SetMetrics sets the metrics recorder. Nil disables recording.
func (s *QueryService) SetMetrics(m driven.MetricsRecorder) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	s.metrics = m
}

// SetGenerationOptions overrides the token limit and temperature.
func (s *QueryService) SetGenerationOptions(maxTokens int, temperature float64) {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	if temperature >= 0 {
		s.temperature = temperature
	}
}

// Query runs the control loop for one question. The only error return is
// domain.ErrInvalidInput for an empty question; every other failure ends
// in a response with Failed set.
func (s *QueryService) Query(ctx context.Context, question, sessionID string) (*domain.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	logger.Section("Query")
	logger.Debug("Session: %s", sessionID)
	logger.Debug("Question: %q", question)
	started := time.Now()

	resp := &domain.QueryResponse{SessionID: sessionID}
	rec := domain.NewToolCallRecord()
	s.enter(resp, domain.StateAwaitingModel)

	if s.llm == nil {
		return s.fail(resp, started, domain.ErrLLMUnavailable), nil
	}

	req := driven.CompletionRequest{
		System:      s.systemPrompt(ctx, sessionID),
		Messages:    []domain.Message{{Role: domain.RoleUser, Content: question}},
		Tools:       s.tools.Definitions(),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	first, err := s.llm.Complete(ctx, req)
	if err != nil {
		return s.fail(resp, started, err), nil
	}

	answer := first.Text
	if first.WantsTool() {
		s.enter(resp, domain.StateToolRequested)
		call := first.ToolCalls[0]
		for _, ignored := range first.ToolCalls[1:] {
			logger.Warn("Ignoring additional tool call %q (%s)", ignored.Name, ignored.ID)
		}

		output := s.executeTool(ctx, call, rec)
		s.enter(resp, domain.StateToolExecuted)

		req.Messages = append(req.Messages,
			domain.Message{Role: domain.RoleAssistant, Content: first.Text, ToolCalls: []domain.ToolCall{call}},
			domain.Message{Role: domain.RoleTool, Content: output, ToolCallID: call.ID, ToolName: call.Name},
		)
		req.Tools = nil
		req.System = s.followUpPrompt(req.System)

		second, err := s.llm.Complete(ctx, req)
		if err != nil {
			return s.fail(resp, started, err), nil
		}
		if second.WantsTool() {
			logger.Warn("Ignoring %d tool call(s) requested after the tool round", len(second.ToolCalls))
		}
		answer = second.Text
	}
	if strings.TrimSpace(answer) == "" {
		return s.fail(resp, started, errEmptyAnswer), nil
	}

	resp.Answer = answer
	resp.Sources = rec.Sources()
	rec.Reset()
	s.enter(resp, domain.StateDone)

	if s.history != nil {
		if err := s.history.Append(ctx, sessionID, question, answer); err != nil {
			logger.Warn("Failed to append history for session %s: %v", sessionID, err)
		}
	}
	s.metrics.QueryCompleted(false, time.Since(started))
	logger.Debug("Answered with %d source(s) in %s", len(resp.Sources), time.Since(started))
	return resp, nil
}

// executeTool runs exactly one tool call. Failures become text for the model.
func (s *QueryService) executeTool(ctx context.Context, call domain.ToolCall, rec *domain.ToolCallRecord) string {
	logger.Debug("Executing tool %q with %v", call.Name, call.Arguments)
	output, err := s.tools.Execute(ctx, call, rec)
	if err != nil {
		logger.Warn("Tool %q failed: %v", call.Name, err)
		s.metrics.ToolExecuted(call.Name, false)
		return fmt.Sprintf("Tool execution failed: %v", err)
	}
	s.metrics.ToolExecuted(call.Name, true)
	return output
}

// followUpPrompt appends the optional answer-from-results instructions
// used once the tool round is over.
func (s *QueryService) followUpPrompt(system string) string {
	if s.prompts == nil {
		return system
	}
	p, err := s.prompts.Load(driven.PromptNoTools)
	if err != nil || p == "" {
		return system
	}
	return system + "\n\n" + p
}

// systemPrompt combines the configured prompt with the session's history.
// History failures are logged and the question proceeds without history.
func (s *QueryService) systemPrompt(ctx context.Context, sessionID string) string {
	prompt := fallbackSystemPrompt
	if s.prompts != nil {
		if p, err := s.prompts.Load(driven.PromptChatSystem); err == nil && p != "" {
			prompt = p
		} else if err != nil {
			logger.Warn("Failed to load system prompt: %v", err)
		}
	}
	if s.history == nil {
		return prompt
	}
	history, err := s.history.GetHistory(ctx, sessionID)
	if err != nil {
		logger.Warn("Failed to load history for session %s: %v", sessionID, err)
		return prompt
	}
	if history == "" {
		return prompt
	}
	return prompt + "\n\nPrevious conversation:\n" + history
}

func (s *QueryService) fail(resp *domain.QueryResponse, started time.Time, cause error) *domain.QueryResponse {
	logger.Warn("Model invocation failed: %v", cause)
	resp.Answer = modelFailureAnswer
	resp.Sources = nil
	resp.Failed = true
	resp.Err = fmt.Errorf("%w: %w", domain.ErrModelInvocation, cause)
	s.enter(resp, domain.StateDone)
	s.metrics.QueryCompleted(true, time.Since(started))
	return resp
}

func (s *QueryService) enter(resp *domain.QueryResponse, state domain.QueryState) {
	resp.Trace = append(resp.Trace, state)
	s.metrics.QueryState(state)
	logger.Debug("State: %s", state)
}
