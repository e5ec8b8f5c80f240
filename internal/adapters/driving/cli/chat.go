package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
)

var chatPlain bool

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Start an interactive conversation",
	Long: `Start an interactive conversation about your courses.

In a terminal this opens the full-screen interface with chat, search and
course views. Otherwise, or with --plain, questions are read line by line
from standard input.

Controls:
  Enter    - Send question / Search / Select
  Ctrl+N   - Start a new conversation
  Esc      - Back
  Ctrl+C   - Quit

In plain mode type /new to start a new conversation and /quit to exit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "read questions line by line instead of opening the TUI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if chatPlain || !isTerminal() {
		return runREPL(cmd)
	}
	return runTUI(cmd)
}

func runTUI(cmd *cobra.Command) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(queryService, searchService, catalogService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithStartView(messages.ViewChat)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runREPL answers one question per input line, keeping the session.
func runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	sessionID := ""

	cmd.Println("Ask about your courses. /new starts over, /quit exits.")
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			sessionID = ""
			cmd.Println("New conversation.")
			continue
		}

		resp, err := queryService.Query(ctx, line, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			cmd.Printf("Error: %v\n\n", err)
			continue
		}
		if resp.SessionID != "" {
			sessionID = resp.SessionID
		}
		printAnswer(cmd, resp)
		cmd.Println()
	}
}
