// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorStore: Named collections of embedded records (catalog and content)
//   - EmbeddingService: Generates vector embeddings for records and queries
//   - Normaliser: Extracts plain text from raw documents
//   - CourseParser: Turns extracted text into a structured course
//   - Chunker: Splits lessons into context-prefixed chunks
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Tool-calling model. Without it, only search is available.
//   - HistoryStore: Conversation history. Without it, every query is standalone.
//   - MetricsRecorder: Counters and histograms. Without it, nothing is recorded.
//   - DocumentSource: Remote or watched document sources for ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
