package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func TestSearchCmd_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"limit", "n", "5"},
		{"json", "", "false"},
		{"course", "c", ""},
		{"lesson", "l", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := searchCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestSearchCmd_RequiresOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search")
	assert.Error(t, err)

	_, err = executeCommand("search", "one", "two")
	assert.Error(t, err)
}

func TestSearchCmd_BuildsQuery(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "tool calling", "--course", "mcp", "--lesson", "2", "-n", "3")
	require.NoError(t, err)

	q := ts.search.last
	assert.Equal(t, "tool calling", q.Query)
	assert.Equal(t, 3, q.Limit)
	require.NotNil(t, q.CourseName)
	assert.Equal(t, "mcp", *q.CourseName)
	require.NotNil(t, q.LessonNumber)
	assert.Equal(t, 2, *q.LessonNumber)
}

func TestSearchCmd_NoFilters(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "embeddings")
	require.NoError(t, err)

	q := ts.search.last
	assert.Nil(t, q.CourseName)
	assert.Nil(t, q.LessonNumber)
	assert.Equal(t, appSettings.Search.MaxResults, q.Limit)
}

func TestSearchCmd_LessonZero(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "intro", "--lesson", "0")
	require.NoError(t, err)
	require.NotNil(t, ts.search.last.LessonNumber)
	assert.Equal(t, 0, *ts.search.last.LessonNumber)
}

func TestSearchCmd_LimitFromSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	appSettings.Search.MaxResults = 9

	_, err := executeCommand("search", "embeddings")
	require.NoError(t, err)
	assert.Equal(t, 9, ts.search.last.Limit)
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.search.outcome = &domain.SearchOutcome{
		Status:         domain.SearchStatusOK,
		ResolvedCourse: "Intro to MCP",
		Results: []domain.SearchResult{
			{
				Label: "Intro to MCP - Lesson 2",
				Score: 0.87,
				Chunk: domain.Chunk{
					CourseTitle:  "Intro to MCP",
					LessonNumber: 2,
					LessonLink:   "https://example.com/mcp/2",
					Content:      "Servers expose tools to clients.",
				},
			},
		},
	}

	output, err := executeCommand("search", "tools", "--course", "mcp")
	require.NoError(t, err)

	assert.Contains(t, output, "Results in Intro to MCP:")
	assert.Contains(t, output, "[1] Intro to MCP - Lesson 2 (0.87)")
	assert.Contains(t, output, "https://example.com/mcp/2")
	assert.Contains(t, output, "Servers expose tools to clients.")
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	output, err := executeCommand("search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, output, "No results found.")
}

func TestSearchCmd_CourseNotResolved(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.search.outcome = &domain.SearchOutcome{Status: domain.SearchStatusCourseNotResolved}

	output, err := executeCommand("search", "tools", "-c", "zzz")
	require.NoError(t, err)
	assert.Contains(t, output, "No course found matching 'zzz'.")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.search.outcome = &domain.SearchOutcome{
		Status:  domain.SearchStatusOK,
		Results: []domain.SearchResult{{Label: "Intro to MCP - Lesson 1", Score: 0.5}},
	}

	output, err := executeCommand("search", "tools", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Len(t, decoded["results"], 1)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.search.err = errors.New("index offline")

	_, err := executeCommand("search", "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, err := executeCommand("search", "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
