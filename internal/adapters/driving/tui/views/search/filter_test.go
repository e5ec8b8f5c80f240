package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		query      string
		courseName string
		lesson     int
		hasCourse  bool
		hasLesson  bool
	}{
		{name: "plain text", input: "what is a router", query: "what is a router"},
		{name: "single word course", input: "course:MCP routers", query: "routers", courseName: "MCP", hasCourse: true},
		{
			name: "quoted course", input: `course:"Intro to X" lesson:2 packet loss`,
			query: "packet loss", courseName: "Intro to X", hasCourse: true, lesson: 2, hasLesson: true,
		},
		{name: "lesson only", input: "lesson:0 welcome", query: "welcome", lesson: 0, hasLesson: true},
		{name: "bad lesson kept as text", input: "lesson:two intro", query: "lesson:two intro"},
		{name: "filters after text", input: "routing course:Net", query: "routing", courseName: "Net", hasCourse: true},
		{name: "empty course ignored", input: `course:"" hello`, query: "hello"},
		{name: "extra whitespace", input: "  a   b  ", query: "a b"},
		{name: "empty", input: "", query: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.input)

			assert.Equal(t, tt.query, q.Query)
			if tt.hasCourse {
				if assert.NotNil(t, q.CourseName) {
					assert.Equal(t, tt.courseName, *q.CourseName)
				}
			} else {
				assert.Nil(t, q.CourseName)
			}
			if tt.hasLesson {
				if assert.NotNil(t, q.LessonNumber) {
					assert.Equal(t, tt.lesson, *q.LessonNumber)
				}
			} else {
				assert.Nil(t, q.LessonNumber)
			}
		})
	}
}
