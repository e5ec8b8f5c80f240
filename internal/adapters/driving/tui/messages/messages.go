// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// QuestionAsked is sent when the user submits a chat question.
type QuestionAsked struct {
	Question string
}

// AnswerReceived carries the query service response back to the model.
type AnswerReceived struct {
	Question string
	Response *domain.QueryResponse
	Err      error
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Outcome *domain.SearchOutcome
	Err     error
}

// CoursesLoaded carries the course catalog and index statistics.
type CoursesLoaded struct {
	Courses []domain.CatalogEntry
	Stats   domain.IndexStats
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewSearch is the direct search view.
	ViewSearch
	// ViewCourses lists indexed courses.
	ViewCourses
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewCourses:
		return "courses"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
