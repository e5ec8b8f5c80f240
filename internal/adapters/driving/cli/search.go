package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchCourse string
	searchLesson int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed course content",
	Long: `Search lesson content by meaning, without asking the model.

--course accepts a partial or misspelled course name; it is resolved to the
closest indexed course title. --lesson limits results to one lesson.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVarP(&searchCourse, "course", "c", "", "limit to a course (fuzzy match)")
	searchCmd.Flags().IntVarP(&searchLesson, "lesson", "l", -1, "limit to a lesson number")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := domain.SearchQuery{
		Query: args[0],
		Limit: searchLimit,
	}
	if !cmd.Flags().Changed("limit") && appSettings != nil && appSettings.Search.MaxResults > 0 {
		query.Limit = appSettings.Search.MaxResults
	}
	if searchCourse != "" {
		course := searchCourse
		query.CourseName = &course
	}
	if cmd.Flags().Changed("lesson") {
		lesson := searchLesson
		query.LessonNumber = &lesson
	}

	outcome, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, outcome)
	}
	outputSearchTable(cmd, query, outcome)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, outcome *domain.SearchOutcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, query domain.SearchQuery, outcome *domain.SearchOutcome) {
	if outcome.Status == domain.SearchStatusCourseNotResolved {
		cmd.Printf("No course found matching '%s'.\n", *query.CourseName)
		return
	}
	if len(outcome.Results) == 0 {
		cmd.Println("No results found.")
		return
	}

	if outcome.ResolvedCourse != "" {
		cmd.Printf("Results in %s:\n", outcome.ResolvedCourse)
	} else {
		cmd.Println("Results:")
	}
	cmd.Println()
	for i, r := range outcome.Results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, r.Label, r.Score)
		if r.Chunk.LessonLink != "" {
			cmd.Printf("      %s\n", r.Chunk.LessonLink)
		}
		preview := strings.TrimSpace(list.Truncate(list.Preview(r.Chunk), 200))
		if preview != "" {
			cmd.Printf("      %s\n", preview)
		}
		cmd.Println()
	}
}
