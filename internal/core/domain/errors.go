package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrMalformedDocument indicates a course document that does not follow the
	// header and lesson grammar. The file is skipped; a batch continues.
	ErrMalformedDocument = errors.New("malformed document")

	// Query Errors.

	// ErrCourseNotResolved indicates a course name filter matched no catalog entry.
	// Searches report it as a status, never as a failure.
	ErrCourseNotResolved = errors.New("no matching course")

	// ErrUnknownTool indicates the model requested a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolExecution indicates a tool failed. The failure is described to the model.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrModelInvocation indicates the language model could not be reached or failed.
	// It is surfaced to the caller as a user-facing answer and never retried.
	ErrModelInvocation = errors.New("model invocation failed")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
