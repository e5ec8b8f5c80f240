package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found on disk, the embedded default is returned.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptChatSystem is the system prompt for answering course questions.
	// It has no format placeholders; history is appended after it.
	PromptChatSystem = "chat_system"

	// PromptNoTools is appended to the system prompt on the second model call,
	// after the search results have been added.
	PromptNoTools = "answer_from_results"
)
