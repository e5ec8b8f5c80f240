package driven

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	meta := map[string]any{
		MetaCourseTitle:  "Intro to X",
		MetaLessonNumber: float64(2),
	}

	tests := []struct {
		name     string
		filter   Filter
		expected bool
	}{
		{"empty filter matches", Filter{}, true},
		{"nil filter matches", nil, true},
		{"title equality", Filter{MetaCourseTitle: "Intro to X"}, true},
		{"title mismatch", Filter{MetaCourseTitle: "Intro to Y"}, false},
		{"int against float", Filter{MetaLessonNumber: 2}, true},
		{"json number", Filter{MetaLessonNumber: json.Number("2")}, true},
		{"lesson mismatch", Filter{MetaLessonNumber: 3}, false},
		{"both", Filter{MetaCourseTitle: "Intro to X", MetaLessonNumber: 2}, true},
		{"missing key", Filter{MetaLessonLink: "x"}, false},
		{"number against string", Filter{MetaCourseTitle: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(meta))
		})
	}
}

func TestCompletion_WantsTool(t *testing.T) {
	var nilCompletion *Completion
	assert.False(t, nilCompletion.WantsTool())
	assert.False(t, (&Completion{Text: "hi"}).WantsTool())
}
