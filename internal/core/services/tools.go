package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// SearchToolName is the name the model uses to request a content search.
const SearchToolName = "search_course_content"

// Tool argument names.
const (
	argQuery        = "query"
	argCourseName   = "course_name"
	argLessonNumber = "lesson_number"
)

// ToolExecutor is a tool the model may invoke.
type ToolExecutor interface {
	// Definition returns the schema offered to the model.
	Definition() domain.ToolDefinition

	// Execute runs the tool and returns text for the model. Sources touched
	// by the execution are added to rec.
	Execute(ctx context.Context, args map[string]any, rec *domain.ToolCallRecord) (string, error)
}

// ToolRegistry maps tool names to executors. It is populated at startup
// and read-only afterwards.
type ToolRegistry struct {
	tools map[string]ToolExecutor
	order []string
}

// NewToolRegistry creates a registry holding the given tools.
func NewToolRegistry(tools ...ToolExecutor) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]ToolExecutor)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(t ToolExecutor) {
	name := t.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Definitions returns the schemas of all tools in registration order.
func (r *ToolRegistry) Definitions() []domain.ToolDefinition {
	defs := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Lookup returns the tool registered under name.
func (r *ToolRegistry) Lookup(name string) (ToolExecutor, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs the tool named by the call.
func (r *ToolRegistry) Execute(ctx context.Context, call domain.ToolCall, rec *domain.ToolCallRecord) (string, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTool, call.Name)
	}
	return t.Execute(ctx, call.Arguments, rec)
}

// SearchTool lets the model search course content with optional course
// and lesson filters.
type SearchTool struct {
	search driving.SearchService
	limit  int
}

// NewSearchTool creates the search tool. A non-positive limit uses the
// default search limit.
func NewSearchTool(search driving.SearchService, limit int) *SearchTool {
	return &SearchTool{search: search, limit: limit}
}

// Definition returns the fixed search tool schema.
func (t *SearchTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name: SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering. " +
			"Use it for questions about specific course content or detailed educational material.",
		Parameters: []domain.ToolParameter{
			{
				Name:        argQuery,
				Type:        domain.ParameterString,
				Description: "What to search for in the course content",
				Required:    true,
			},
			{
				Name:        argCourseName,
				Type:        domain.ParameterString,
				Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			{
				Name:        argLessonNumber,
				Type:        domain.ParameterInteger,
				Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
	}
}

// Execute validates the arguments, searches and formats the results.
// The returned text is never empty.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any, rec *domain.ToolCallRecord) (string, error) {
	q, err := parseSearchArgs(args)
	if err != nil {
		return "", err
	}
	q.Limit = t.limit

	outcome, err := t.search.Search(ctx, q)
	if err != nil {
		return "", err
	}

	if outcome.Status == domain.SearchStatusCourseNotResolved {
		return fmt.Sprintf("No course found matching '%s'.", *q.CourseName), nil
	}
	if len(outcome.Results) == 0 {
		return noResultsMessage(q), nil
	}

	blocks := make([]string, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		blocks = append(blocks, domain.FormatResult(r))
		if rec != nil {
			rec.Add(r.Source())
		}
	}
	logger.Debug("Search tool returned %d results", len(blocks))
	return strings.Join(blocks, "\n\n"), nil
}

func noResultsMessage(q domain.SearchQuery) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if q.CourseName != nil {
		fmt.Fprintf(&b, " in course '%s'", *q.CourseName)
	}
	if q.LessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *q.LessonNumber)
	}
	b.WriteString(".")
	return b.String()
}

func parseSearchArgs(args map[string]any) (domain.SearchQuery, error) {
	var q domain.SearchQuery

	query, ok := args[argQuery].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return q, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, argQuery)
	}
	q.Query = query

	if raw, present := args[argCourseName]; present && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return q, fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, argCourseName)
		}
		if name = strings.TrimSpace(name); name != "" {
			q.CourseName = &name
		}
	}

	if raw, present := args[argLessonNumber]; present && raw != nil {
		n, err := toLessonNumber(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, argLessonNumber, err)
		}
		q.LessonNumber = &n
	}
	return q, nil
}

// toLessonNumber accepts JSON numbers in their decoded forms and numeric strings.
func toLessonNumber(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", n.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
