package domain

import (
	"fmt"
	"strconv"
)

// DefaultSearchLimit is the number of results returned when a query sets no limit.
const DefaultSearchLimit = 5

// labelSeparator joins the course and lesson parts of a source label.
const labelSeparator = " – "

// SearchQuery is a filtered semantic query against the content index.
type SearchQuery struct {
	// Query is the free-text search input.
	Query string

	// CourseName is an optional, possibly misspelled, course name filter.
	CourseName *string

	// LessonNumber is an optional lesson filter.
	LessonNumber *int

	// Limit is the maximum number of results. Zero means DefaultSearchLimit.
	Limit int
}

// EffectiveLimit returns the limit to apply for the query.
func (q SearchQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultSearchLimit
	}
	return q.Limit
}

// SearchStatus distinguishes a normal search from one whose course filter did not resolve.
type SearchStatus string

const (
	// SearchStatusOK means the content index was queried.
	SearchStatusOK SearchStatus = "ok"

	// SearchStatusCourseNotResolved means the course filter matched no catalog entry.
	// The content index was not queried.
	SearchStatusCourseNotResolved SearchStatus = "course_not_resolved"
)

// SearchResult is a scored chunk with its citation label.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Source returns the citation for the result.
func (r SearchResult) Source() Source {
	return Source{Label: r.Label, Link: r.Chunk.LessonLink}
}

// SearchOutcome is the result of a search together with its status.
type SearchOutcome struct {
	Status         SearchStatus   `json:"status"`
	ResolvedCourse string         `json:"resolved_course,omitempty"`
	Results        []SearchResult `json:"results"`
}

// Err returns ErrCourseNotResolved for unresolved outcomes and nil otherwise.
func (o *SearchOutcome) Err() error {
	if o.Status == SearchStatusCourseNotResolved {
		return ErrCourseNotResolved
	}
	return nil
}

// Source is a human-readable citation attached to an answer.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// SourceLabel builds the "Course – Lesson N" label.
// A nil lesson number yields the course title alone.
func SourceLabel(courseTitle string, lessonNumber *int) string {
	if lessonNumber == nil {
		return courseTitle
	}
	return courseTitle + labelSeparator + "Lesson " + strconv.Itoa(*lessonNumber)
}

// FormatResult renders a result as "[Course – Lesson N]\ncontent".
func FormatResult(r SearchResult) string {
	return fmt.Sprintf("[%s]\n%s", r.Label, r.Chunk.Content)
}
