package domain

import "strings"

// Role is the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single provider-neutral conversation message.
type Message struct {
	// Role is who produced the message.
	Role Role

	// Content is the message text. For RoleTool it is the tool output.
	Content string

	// ToolCalls are the tool invocations requested by an assistant message.
	ToolCalls []ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string

	// ToolName is the tool that produced a RoleTool message.
	ToolName string
}

// Exchange is one question and answer pair of a session's history.
type Exchange struct {
	Question string
	Answer   string
}

// FormatHistory renders exchanges oldest first as "User: ...\nAssistant: ..." lines.
func FormatHistory(exchanges []Exchange) string {
	if len(exchanges) == 0 {
		return ""
	}
	lines := make([]string, 0, len(exchanges)*2)
	for _, e := range exchanges {
		lines = append(lines, "User: "+e.Question, "Assistant: "+e.Answer)
	}
	return strings.Join(lines, "\n")
}

// QueryState is a state of the tool-calling control loop.
type QueryState string

// Control loop states.
const (
	StateAwaitingModel QueryState = "AWAITING_MODEL"
	StateToolRequested QueryState = "TOOL_REQUESTED"
	StateToolExecuted  QueryState = "TOOL_EXECUTED"
	StateDone          QueryState = "DONE"
)

// QueryResponse is the terminal result of a query.
type QueryResponse struct {
	// Answer is the final, user-visible answer. Always set.
	Answer string `json:"answer"`

	// Sources cite the passages the answer's search touched.
	Sources []Source `json:"sources"`

	// SessionID identifies the conversation the exchange belongs to.
	SessionID string `json:"session_id"`

	// Trace lists the states the control loop passed through.
	Trace []QueryState `json:"trace,omitempty"`

	// Failed is true when Answer describes a failure rather than a model answer.
	Failed bool `json:"failed,omitempty"`

	// Err holds the underlying failure when Failed is true.
	Err error `json:"-"`
}

// SourceLabels returns the labels of the response's sources.
func (r *QueryResponse) SourceLabels() []string {
	labels := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		labels[i] = s.Label
	}
	return labels
}

// Visited reports whether the control loop passed through the given state.
func (r *QueryResponse) Visited(state QueryState) bool {
	for _, s := range r.Trace {
		if s == state {
			return true
		}
	}
	return false
}
