package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/services"
)

type mockIngestService struct {
	report  *domain.IngestReport
	err     error
	sources []string
	opts    domain.IngestOptions
}

func (m *mockIngestService) IngestDocument(context.Context, *domain.RawDocument, domain.IngestOptions) domain.IngestResult {
	return domain.IngestResult{}
}

func (m *mockIngestService) IngestBatch(context.Context, []domain.RawDocument, domain.IngestOptions) *domain.IngestReport {
	return &domain.IngestReport{}
}

func (m *mockIngestService) IngestSource(
	_ context.Context, source driven.DocumentSource, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	m.sources = append(m.sources, source.Type()+":"+source.Name())
	m.opts = opts
	if m.report == nil {
		return &domain.IngestReport{}, m.err
	}
	return m.report, m.err
}

func (m *mockIngestService) Watch(
	context.Context, driven.DocumentSource, domain.IngestOptions, func(domain.IngestResult),
) error {
	return nil
}

type mockSearchService struct {
	outcome *domain.SearchOutcome
	err     error
	last    domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	m.last = q
	if m.outcome == nil && m.err == nil {
		return &domain.SearchOutcome{Status: domain.SearchStatusOK}, nil
	}
	return m.outcome, m.err
}

type mockQueryService struct {
	resp      *domain.QueryResponse
	err       error
	questions []string
	sessions  []string
}

func (m *mockQueryService) Query(_ context.Context, question, sessionID string) (*domain.QueryResponse, error) {
	m.questions = append(m.questions, question)
	m.sessions = append(m.sessions, sessionID)
	if m.resp == nil && m.err == nil {
		return &domain.QueryResponse{Answer: "An answer.", SessionID: "session-1"}, nil
	}
	return m.resp, m.err
}

type mockCatalogService struct {
	courses []domain.CatalogEntry
	err     error
	cleared bool
}

func (m *mockCatalogService) Catalog(context.Context) ([]domain.CatalogEntry, error) {
	return m.courses, m.err
}

func (m *mockCatalogService) ResolveCourseName(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (m *mockCatalogService) Stats(context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Courses: len(m.courses), Chunks: 12}, m.err
}

func (m *mockCatalogService) Clear(context.Context) error {
	m.cleared = true
	return m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest   *mockIngestService
	search   *mockSearchService
	query    *mockQueryService
	catalog  *mockCatalogService
	settings *services.SettingsService
}

// setupTestServices installs mocks for every service and marks the CLI as
// wired so no real storage or provider is opened. The returned function
// restores the previous state.
func setupTestServices() (*testServices, func()) {
	prevIngest, prevSearch, prevQuery := ingestService, searchService, queryService
	prevCatalog, prevSettings := catalogService, settingsService
	prevMetrics, prevApp, prevWired := metricsHandler, appSettings, wired

	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvLookup(func(string) (string, bool) { return "", false })

	ts := &testServices{
		ingest:   &mockIngestService{},
		search:   &mockSearchService{},
		query:    &mockQueryService{},
		catalog:  &mockCatalogService{},
		settings: settings,
	}
	defaults := domain.DefaultAppSettings()

	ingestService = ts.ingest
	searchService = ts.search
	queryService = ts.query
	catalogService = ts.catalog
	settingsService = ts.settings
	metricsHandler = http.NotFoundHandler()
	appSettings = &defaults
	wired = true

	return ts, func() {
		ingestService, searchService, queryService = prevIngest, prevSearch, prevQuery
		catalogService, settingsService = prevCatalog, prevSettings
		metricsHandler, appSettings, wired = prevMetrics, prevApp, prevWired
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

// executeCommandWithInput runs the root command with stdin set to input.
func executeCommandWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
