package driven

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// Normaliser extracts plain text from a raw document.
// Each normaliser handles specific MIME types (e.g., PDF, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise returns the document's text with line structure preserved.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}

// NormaliserRegistry selects the appropriate normaliser for a document.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedType if nothing handles the MIME type.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// CourseParser turns extracted text into a structured course.
type CourseParser interface {
	// Parse returns domain.ErrMalformedDocument when the text does not
	// follow the course grammar.
	Parse(text string) (*domain.Course, error)
}

// Chunker splits a course's lessons into context-prefixed chunks.
type Chunker interface {
	// ChunkCourse returns the chunks of every lesson in lesson order.
	// Positions are course-wide and start at zero.
	ChunkCourse(course *domain.Course) []domain.Chunk
}
