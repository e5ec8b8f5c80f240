package domain

import (
	"fmt"
	"strings"
)

// Course is a parsed course document.
// Title is the unique identifier and the deduplication key for ingestion.
type Course struct {
	// Title is the course title and its identifier.
	Title string

	// Link is the course URL, if present in the header.
	Link string

	// Instructor is the course instructor, if present in the header.
	Instructor string

	// Description is free text found between the header and the first lesson.
	Description string

	// Lessons are ordered as they appear in the document.
	Lessons []Lesson
}

// Lesson is a numbered section of a course.
// Number is unique within its course, not globally.
type Lesson struct {
	Number  int
	Title   string
	Link    string
	Content string
}

// Lesson returns the lesson with the given number.
func (c *Course) Lesson(number int) (*Lesson, bool) {
	for i := range c.Lessons {
		if c.Lessons[i].Number == number {
			return &c.Lessons[i], true
		}
	}
	return nil, false
}

// Summary builds the descriptive text embedded into the catalog.
func (c *Course) Summary() string {
	var b strings.Builder
	b.WriteString(c.Title)
	if c.Instructor != "" {
		fmt.Fprintf(&b, "\nInstructor: %s", c.Instructor)
	}
	if len(c.Lessons) > 0 {
		titles := make([]string, 0, len(c.Lessons))
		for _, l := range c.Lessons {
			titles = append(titles, l.Title)
		}
		fmt.Fprintf(&b, "\nLessons: %s", strings.Join(titles, "; "))
	}
	return b.String()
}

// CatalogEntry returns the catalog metadata for the course.
func (c *Course) CatalogEntry() CatalogEntry {
	lessons := make([]LessonRef, len(c.Lessons))
	for i, l := range c.Lessons {
		lessons[i] = LessonRef{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	return CatalogEntry{
		Title:       c.Title,
		Instructor:  c.Instructor,
		Link:        c.Link,
		LessonCount: len(c.Lessons),
		Lessons:     lessons,
		Summary:     c.Summary(),
	}
}

// CatalogEntry is the course-level record held in the catalog collection.
// It is used only for name resolution and listing, never for content retrieval.
type CatalogEntry struct {
	Title       string      `json:"title"`
	Instructor  string      `json:"instructor,omitempty"`
	Link        string      `json:"link,omitempty"`
	LessonCount int         `json:"lesson_count"`
	Lessons     []LessonRef `json:"lessons,omitempty"`
	Summary     string      `json:"-"`
}

// LessonRef is the lesson outline stored with a catalog entry.
type LessonRef struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Chunk is a bounded, context-prefixed span of lesson text.
// Chunks are immutable once created and regenerated wholesale on re-ingestion.
type Chunk struct {
	// ID is deterministic for a given course title and position.
	ID string `json:"id"`

	// CourseTitle identifies the owning course.
	CourseTitle string `json:"course_title"`

	// LessonNumber identifies the owning lesson within the course.
	LessonNumber int `json:"lesson_number"`

	// LessonLink is copied from the lesson for citation display.
	LessonLink string `json:"lesson_link,omitempty"`

	// Position is the course-wide ordinal of the chunk.
	Position int `json:"position"`

	// Content is the context-prefixed text that is stored and embedded.
	Content string `json:"content"`

	// Embedding is the vector computed from Content.
	Embedding []float32 `json:"-"`
}

// ChunkPrefix returns the deterministic context prefix for a lesson's chunks.
func ChunkPrefix(courseTitle string, lessonNumber int) string {
	return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, lessonNumber)
}

// IndexStats summarises the contents of the dual index.
type IndexStats struct {
	Courses int `json:"courses"`
	Chunks  int `json:"chunks"`
}
