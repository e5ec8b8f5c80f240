// Package cli provides the coursemate command-line interface.
package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Services used by commands. They are wired in PersistentPreRunE, or set
// directly by tests.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	queryService    driving.QueryService
	catalogService  driving.CatalogService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
	appSettings     *domain.AppSettings

	// wired is true once the services above are set.
	wired bool

	// closers release wired resources in reverse order on exit.
	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:   "coursemate",
	Short: "Answer questions from your course materials",
	Long: `coursemate indexes course documents and answers questions about them.

Each course document starts with a header (Course Title, Course Link,
Course Instructor) followed by "Lesson N: Title" sections. Ingested lessons
are split into overlapping chunks and stored in a local vector index.
Questions go to a language model that searches the index when it needs
course content, and answers cite the lessons they came from.

Get started:
  coursemate ingest ./docs
  coursemate ask "What is covered in lesson 2 of the MCP course?"
  coursemate chat`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if wired {
			return nil
		}
		return wire(cmd.Context(), wiringLevel(cmd))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.coursemate)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the SQLite index (default <config-dir>/data)")
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeAll()

	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// closeAll releases wired resources, newest first.
func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Debug("close: %v", err)
		}
	}
	closers = nil
}
