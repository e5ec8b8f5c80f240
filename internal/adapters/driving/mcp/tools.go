package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// SearchInput is the input schema for the search_course_content tool.
type SearchInput struct {
	Query        string  `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   *string `json:"course_name,omitempty" jsonschema:"course title to filter by; partial or misspelled names are resolved"`
	LessonNumber *int    `json:"lesson_number,omitempty" jsonschema:"lesson number to filter by"`
	Limit        int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search_course_content tool.
type SearchOutput struct {
	Status         string               `json:"status"`
	ResolvedCourse string               `json:"resolved_course,omitempty"`
	Message        string               `json:"message,omitempty"`
	Results        []SearchResultOutput `json:"results"`
	Count          int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Label        string  `json:"label"`
	CourseTitle  string  `json:"course_title"`
	LessonNumber int     `json:"lesson_number"`
	LessonLink   string  `json:"lesson_link,omitempty"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// AskInput is the input schema for the ask_course_question tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the course materials"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation id returned by a previous call, to keep context"`
}

// AskOutput is the output schema for the ask_course_question tool.
type AskOutput struct {
	Answer    string          `json:"answer"`
	Sources   []domain.Source `json:"sources"`
	SessionID string          `json:"session_id"`
	Failed    bool            `json:"failed,omitempty"`
}

// ListCoursesInput is the (empty) input schema for the list_courses tool.
type ListCoursesInput struct{}

// ListCoursesOutput is the output schema for the list_courses tool.
type ListCoursesOutput struct {
	Courses []domain.CatalogEntry `json:"courses"`
	Count   int                   `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose port is not configured are not offered.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering. " +
			"Returns the matching passages labelled by course and lesson.",
	}, s.handleSearch)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_course_question",
			Description: "Answer a question using the course materials, with cited sources.",
		}, s.handleAsk)
	}

	if s.ports.Catalog != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_courses",
			Description: "List every indexed course with its instructor and lesson outline.",
		}, s.handleListCourses)
	}
}

// handleSearch handles the search_course_content tool invocation.
// An unresolved course name is reported in the output, not as an error.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}

	outcome, err := s.ports.Search.Search(ctx, domain.SearchQuery{
		Query:        input.Query,
		CourseName:   input.CourseName,
		LessonNumber: input.LessonNumber,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Status:         string(outcome.Status),
		ResolvedCourse: outcome.ResolvedCourse,
		Results:        make([]SearchResultOutput, len(outcome.Results)),
		Count:          len(outcome.Results),
	}
	if outcome.Status == domain.SearchStatusCourseNotResolved && input.CourseName != nil {
		output.Message = "No course found matching '" + *input.CourseName + "'"
	}

	for i, r := range outcome.Results {
		output.Results[i] = SearchResultOutput{
			Label:        r.Label,
			CourseTitle:  r.Chunk.CourseTitle,
			LessonNumber: r.Chunk.LessonNumber,
			LessonLink:   r.Chunk.LessonLink,
			Score:        r.Score,
			Content:      r.Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask_course_question tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	resp, err := s.ports.Query.Query(ctx, input.Question, input.SessionID)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := resp.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return nil, AskOutput{
		Answer:    resp.Answer,
		Sources:   sources,
		SessionID: resp.SessionID,
		Failed:    resp.Failed,
	}, nil
}

// handleListCourses handles the list_courses tool invocation.
func (s *Server) handleListCourses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCoursesInput,
) (*mcp.CallToolResult, ListCoursesOutput, error) {
	courses, err := s.ports.Catalog.Catalog(ctx)
	if err != nil {
		return nil, ListCoursesOutput{}, err
	}
	if courses == nil {
		courses = []domain.CatalogEntry{}
	}
	return nil, ListCoursesOutput{Courses: courses, Count: len(courses)}, nil
}
