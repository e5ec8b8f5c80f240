// Package course parses course documents into structured courses.
//
// A course document starts with header lines and continues with lessons:
//
//	Course Title: Intro to X
//	Course Link: https://example.com/x
//	Course Instructor: Ada Lovelace
//
//	Lesson 0: Welcome
//	Lesson Link: https://example.com/x/0
//	...lesson body...
//
// Only the title header is mandatory. Text between the header and the first
// lesson becomes the course description.
package course

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers/plaintext"
)

// Ensure Parser implements the interface.
var _ driven.CourseParser = (*Parser)(nil)

var (
	headerLine = regexp.MustCompile(`^Course (Title|Link|Instructor):\s*(.*)$`)
	lessonLine = regexp.MustCompile(`^Lesson\s+(\d+)\s*:\s*(.*)$`)
	linkLine   = regexp.MustCompile(`^Lesson Link:\s*(\S*)\s*$`)
)

// Parser parses course documents.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse turns document text into a course. It returns
// domain.ErrMalformedDocument when the title is missing or a lesson
// number repeats.
func (p *Parser) Parse(text string) (*domain.Course, error) {
	lines := strings.Split(plaintext.Clean(text), "\n")

	course := &domain.Course{}
	var description []string
	var body []string
	var current *domain.Lesson

	flush := func() {
		if current != nil {
			current.Content = trimBlankLines(body)
			course.Lessons = append(course.Lessons, *current)
		}
		body = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(line)

		if m := lessonLine.FindStringSubmatch(trimmed); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: lesson number %q: %w", i+1, m[1], domain.ErrMalformedDocument)
			}
			flush()
			if _, dup := course.Lesson(n); dup {
				return nil, fmt.Errorf("line %d: duplicate lesson %d: %w", i+1, n, domain.ErrMalformedDocument)
			}
			current = &domain.Lesson{Number: n, Title: strings.TrimSpace(m[2])}

			if next := nextNonBlank(lines, i+1); next >= 0 {
				if lm := linkLine.FindStringSubmatch(strings.TrimSpace(lines[next])); lm != nil {
					current.Link = lm[1]
					i = next
				}
			}
			continue
		}

		if current == nil {
			if m := headerLine.FindStringSubmatch(trimmed); m != nil {
				value := strings.TrimSpace(m[2])
				switch m[1] {
				case "Title":
					if course.Title == "" {
						course.Title = value
					}
				case "Link":
					course.Link = value
				case "Instructor":
					course.Instructor = value
				}
				continue
			}
			description = append(description, line)
			continue
		}

		body = append(body, line)
	}
	flush()

	if course.Title == "" {
		return nil, fmt.Errorf("missing Course Title header: %w", domain.ErrMalformedDocument)
	}
	course.Description = trimBlankLines(description)
	return course, nil
}

func nextNonBlank(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

func trimBlankLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
