package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	text, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, text)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Course Title: X\n## Lesson 1: Basics",
			expected: "Course Title: X\nLesson 1: Basics",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "body links keep text",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "header links keep url",
			input:    "Lesson Link: [watch](https://example.com/l_1)",
			expected: "Lesson Link: https://example.com/l_1",
		},
		{
			name:     "autolinks unwrapped",
			input:    "Course Link: <https://example.com/x>",
			expected: "Course Link: https://example.com/x",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code fences removed, code kept",
			input:    "Before\n```go\nx := 1\n```\nAfter",
			expected: "Before\nx := 1\nAfter",
		},
		{
			name:     "inline code unwrapped",
			input:    "Use `make` here",
			expected: "Use make here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "underscores untouched",
			input:    "snake_case_name",
			expected: "snake_case_name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestNormalise_CourseDocument(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/courses/intro.md",
		MIMEType: "text/markdown",
		Content: []byte("# Course Title: Intro to X\r\n" +
			"Course Instructor: Ada\r\n\r\n\r\n\r\n" +
			"## Lesson 0: Welcome\r\n" +
			"Lesson Link: [video](https://example.com/0)\r\n" +
			"Welcome to **X**.\r\n"),
	}

	text, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Course Title: Intro to X\nCourse Instructor: Ada\n\n"+
		"Lesson 0: Welcome\nLesson Link: https://example.com/0\nWelcome to X.", text)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
