package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your courses",
	Long: `Ask a question and print the answer with the lessons it came from.

The model decides whether to search the course index. General questions
are answered directly; course questions search at most once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "continue a conversation by session id")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	resp, err := queryService.Query(cmd.Context(), question, askSession)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printAnswer(cmd, resp)
	if resp.Failed {
		return resp.Err
	}
	return nil
}

// printAnswer prints an answer followed by its sources.
func printAnswer(cmd *cobra.Command, resp *domain.QueryResponse) {
	cmd.Println(resp.Answer)
	if len(resp.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, src := range resp.Sources {
		if src.Link != "" {
			cmd.Printf("  - %s (%s)\n", src.Label, src.Link)
		} else {
			cmd.Printf("  - %s\n", src.Label)
		}
	}
}
