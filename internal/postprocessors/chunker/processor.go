// Package chunker splits lesson text into overlapping, sentence-aligned windows.
package chunker

import (
	"iter"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per window.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// chunkNamespace scopes deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("5b0e3c52-8f4d-4a8e-9d0b-2f6c1a7e3d91")

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits lesson bodies into chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective window size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int { return p.overlap }

// ChunkCourse chunks every lesson of the course in lesson order.
// Each chunk's content is the lesson's context prefix followed by its window.
func (p *Processor) ChunkCourse(course *domain.Course) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0
	for _, lesson := range course.Lessons {
		prefix := domain.ChunkPrefix(course.Title, lesson.Number)
		for window := range p.Windows(strings.TrimSpace(lesson.Content)) {
			chunks = append(chunks, domain.Chunk{
				ID:           ChunkID(course.Title, position),
				CourseTitle:  course.Title,
				LessonNumber: lesson.Number,
				LessonLink:   lesson.Link,
				Position:     position,
				Content:      prefix + window,
			})
			position++
		}
	}
	return chunks
}

// ChunkID returns the deterministic ID of the chunk at a course-wide position.
func ChunkID(courseTitle string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(courseTitle+"/"+strconv.Itoa(position))).String()
}

// Windows yields windows of at most the chunk size over text.
//
// A window ends after the last sentence terminator (. ! ?) that is followed by
// whitespace, else after the last whitespace, else at the size limit. The
// candidate end must lie past start+overlap so every step moves forward.
// The next window begins overlap characters before the previous end, so
// concatenating w0, w1[overlap:], w2[overlap:] ... reproduces text exactly.
func (p *Processor) Windows(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		n := len(runes)
		start := 0
		for start < n {
			if n-start <= p.chunkSize {
				yield(string(runes[start:]))
				return
			}
			end := p.windowEnd(runes, start)
			if !yield(string(runes[start:end])) {
				return
			}
			start = end - p.overlap
		}
	}
}

// windowEnd picks the exclusive end of the window starting at start.
// The caller guarantees start+chunkSize < len(runes).
func (p *Processor) windowEnd(runes []rune, start int) int {
	limit := start + p.chunkSize
	minEnd := start + p.overlap + 1

	for end := limit; end >= minEnd; end-- {
		if isSentenceEnd(runes[end-1]) && unicode.IsSpace(runes[end]) {
			return end
		}
	}
	for end := limit; end >= minEnd; end-- {
		if unicode.IsSpace(runes[end-1]) {
			return end
		}
	}
	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
