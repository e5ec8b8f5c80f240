// Package domain defines the core business entities for coursemate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course, Lesson: A parsed course document
//   - Chunk: A context-prefixed span of lesson text, the unit of retrieval
//   - CatalogEntry: Course-level metadata used for name resolution
//   - SearchQuery, SearchOutcome: Filtered semantic search over chunks
//   - ToolDefinition, ToolCall: Provider-neutral tool calling
//   - QueryResponse: An answer with its cited sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
