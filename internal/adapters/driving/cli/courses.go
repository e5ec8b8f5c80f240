package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	coursesJSON    bool
	coursesLessons bool
	clearYes       bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List indexed courses",
	Long:  `List every indexed course with its instructor, link and lesson count.`,
	Args:  cobra.NoArgs,
	RunE:  runCourses,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every course from the index",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output the catalog as JSON")
	coursesCmd.Flags().BoolVarP(&coursesLessons, "lessons", "l", false, "include the lesson outline")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(clearCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	ctx := cmd.Context()
	entries, err := catalogService.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("listing courses: %w", err)
	}

	if coursesJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal catalog: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No courses indexed. Run 'coursemate ingest <path>' to add some.")
		return nil
	}

	stats, err := catalogService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	cmd.Printf("%d courses, %d chunks\n\n", stats.Courses, stats.Chunks)
	for _, c := range entries {
		cmd.Printf("%s (%d lessons)\n", c.Title, c.LessonCount)
		if c.Instructor != "" {
			cmd.Printf("  Instructor: %s\n", c.Instructor)
		}
		if c.Link != "" {
			cmd.Printf("  Link: %s\n", c.Link)
		}
		if coursesLessons {
			for _, l := range c.Lessons {
				cmd.Printf("    %d. %s\n", l.Number, l.Title)
			}
		}
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if !clearYes {
		cmd.Print("Remove every indexed course? [y/N]: ")
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := catalogService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}
