package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewChat, "chat"},
		{ViewSearch, "search"},
		{ViewCourses, "courses"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_MenuIsZero(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewMenu, v)
}

func TestAnswerReceived_Fields(t *testing.T) {
	resp := &domain.QueryResponse{Answer: "A", SessionID: "s"}
	msg := AnswerReceived{Question: "Q", Response: resp}

	assert.Equal(t, "Q", msg.Question)
	assert.Same(t, resp, msg.Response)
	assert.NoError(t, msg.Err)
}

func TestSearchCompleted_WithError(t *testing.T) {
	err := errors.New("boom")
	msg := SearchCompleted{Err: err}

	assert.Nil(t, msg.Outcome)
	assert.Equal(t, err, msg.Err)
}

func TestCoursesLoaded_Fields(t *testing.T) {
	msg := CoursesLoaded{
		Courses: []domain.CatalogEntry{{Title: "Intro to X"}},
		Stats:   domain.IndexStats{Courses: 1, Chunks: 12},
	}

	assert.Len(t, msg.Courses, 1)
	assert.Equal(t, 12, msg.Stats.Chunks)
}
