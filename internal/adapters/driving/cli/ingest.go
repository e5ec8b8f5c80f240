package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/connectors/filesystem"
	"github.com/custodia-labs/coursemate/internal/connectors/github"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

var (
	ingestForce  bool
	ingestWatch  bool
	ingestGitHub []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index course documents",
	Long: `Parse course documents and add them to the index.

Paths may be files or directories; directories are walked recursively and
hidden entries are skipped. Plain text, Markdown, HTML, PDF and DOCX files
are supported. A course whose title is already indexed is skipped unless
--force is given.

Examples:
  coursemate ingest ./docs
  coursemate ingest course1.txt course2.pdf --force
  coursemate ingest --github owner/repo/courses@main
  coursemate ingest ./docs --watch`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "replace courses that are already indexed")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and ingest changed files")
	ingestCmd.Flags().StringArrayVar(&ingestGitHub, "github", nil, "ingest from a GitHub repository (owner/repo[/path][@ref])")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if len(args) == 0 && len(ingestGitHub) == 0 {
		return errors.New("nothing to ingest: give a path or --github owner/repo")
	}
	if ingestWatch && len(args) == 0 {
		return errors.New("--watch needs at least one path")
	}

	ctx := cmd.Context()
	opts := domain.IngestOptions{Force: ingestForce}

	sources, err := ingestSources(cmd, args)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sources {
			if err := s.Close(); err != nil {
				logger.Debug("closing %s: %v", s.Name(), err)
			}
		}
	}()

	total := &domain.IngestReport{}
	for _, source := range sources {
		report, err := ingestService.IngestSource(ctx, source, opts)
		if report != nil {
			for _, res := range report.Results {
				total.Add(res)
			}
		}
		if err != nil {
			return fmt.Errorf("ingest %s: %w", source.Name(), err)
		}
	}
	printIngestReport(cmd, total)

	if ingestWatch {
		return watchSources(cmd, sources, opts)
	}
	if len(total.Results) > 0 && len(total.Failures()) == len(total.Results) {
		return errors.New("every document failed to ingest")
	}
	return nil
}

// ingestSources builds a document source per path and per --github spec.
func ingestSources(cmd *cobra.Command, paths []string) ([]driven.DocumentSource, error) {
	sources := make([]driven.DocumentSource, 0, len(paths)+len(ingestGitHub))
	for _, p := range paths {
		sources = append(sources, filesystem.New(p))
	}

	for _, spec := range ingestGitHub {
		cfg, err := github.ParseRepoSpec(spec)
		if err != nil {
			return nil, err
		}
		if appSettings != nil {
			cfg.Token = appSettings.GitHub.Token
		}
		src, err := github.New(cmd.Context(), cfg)
		if err != nil {
			return nil, fmt.Errorf("github %s: %w", spec, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// watchSources ingests changes from every watchable source until interrupted.
func watchSources(cmd *cobra.Command, sources []driven.DocumentSource, opts domain.IngestOptions) error {
	ctx := cmd.Context()
	errs := make(chan error, len(sources))
	watching := 0

	for _, source := range sources {
		if !source.Capabilities().SupportsWatch {
			cmd.Printf("Not watching %s: source does not support watching\n", source.Name())
			continue
		}
		watching++
		go func(s driven.DocumentSource) {
			errs <- ingestService.Watch(ctx, s, opts, func(res domain.IngestResult) {
				printIngestResult(cmd, res)
			})
		}(source)
	}
	if watching == 0 {
		return nil
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	var firstErr error
	for i := 0; i < watching; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	if len(report.Results) == 0 {
		cmd.Println("No course documents found.")
		return
	}
	for _, res := range report.Results {
		printIngestResult(cmd, res)
	}
	cmd.Println()
	cmd.Printf("Added %d, replaced %d, skipped %d, failed %d (%d chunks)\n",
		report.Count(domain.IngestAdded),
		report.Count(domain.IngestReplaced),
		report.Count(domain.IngestSkipped),
		report.Count(domain.IngestFailed),
		report.Chunks(),
	)
}

func printIngestResult(cmd *cobra.Command, res domain.IngestResult) {
	switch res.Outcome {
	case domain.IngestFailed:
		cmd.Printf("  failed    %s: %v\n", res.URI, res.Err)
	case domain.IngestSkipped:
		cmd.Printf("  skipped   %s (already indexed)\n", res.CourseTitle)
	default:
		cmd.Printf("  %-9s %s (%d chunks)\n", res.Outcome, res.CourseTitle, res.Chunks)
	}
}
