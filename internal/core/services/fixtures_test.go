package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/coursemate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers"
	"github.com/custodia-labs/coursemate/internal/normalisers/course"
	"github.com/custodia-labs/coursemate/internal/normalisers/markdown"
	"github.com/custodia-labs/coursemate/internal/normalisers/plaintext"
	"github.com/custodia-labs/coursemate/internal/postprocessors/chunker"
)

// --- Fixtures ---

const introToX = `Course Title: Intro to X
Course Link: https://example.com/x
Course Instructor: Ada Lovelace

Lesson 0: Welcome
Lesson Link: https://example.com/x/0
X is a framework for building small tools. This lesson gives an overview of the framework.

Lesson 1: Components
Lesson Link: https://example.com/x/1
Components are composable units in X. Every component declares its inputs and outputs. Components can be nested inside other components.

Lesson 2: Deployment
Lesson Link: https://example.com/x/2
Deployment packages the components into a single binary. The binary runs anywhere.
`

const advancedRetrieval = `Course Title: Advanced Retrieval
Course Link: https://example.com/retrieval
Course Instructor: Bob Smith

Lesson 1: Embeddings
Lesson Link: https://example.com/retrieval/1
Embeddings map passages into vectors. Similar passages land near each other.

Lesson 2: Reranking
Lesson Link: https://example.com/retrieval/2
Reranking reorders candidate passages with a stronger model.
`

func rawCourse(uri, text string) domain.RawDocument {
	return domain.RawDocument{URI: uri, MIMEType: "text/plain", Content: []byte(text)}
}

func parseCourse(t *testing.T, text string) *domain.Course {
	t.Helper()
	c, err := course.NewParser().Parse(text)
	require.NoError(t, err)
	return c
}

// newTestIndex returns an index over the in-memory store with the built-in embedder.
func newTestIndex() (*CourseIndex, *memory.VectorStore) {
	store := memory.NewVectorStore()
	return NewCourseIndex(store, local.NewEmbeddingService(local.Config{})), store
}

// newIndexedCourses returns an index holding both fixture courses.
func newIndexedCourses(t *testing.T) *CourseIndex {
	t.Helper()
	index, _ := newTestIndex()
	c := chunker.New(chunker.WithChunkSize(120), chunker.WithOverlap(20))
	for _, text := range []string{introToX, advancedRetrieval} {
		parsed := parseCourse(t, text)
		added, err := index.UpsertCourse(context.Background(), parsed, c.ChunkCourse(parsed))
		require.NoError(t, err)
		require.True(t, added)
	}
	return index
}

func newTestIngest(index *CourseIndex) *IngestService {
	return NewIngestService(
		normalisers.NewRegistry(plaintext.New(), markdown.New()),
		course.NewParser(),
		chunker.New(chunker.WithChunkSize(120), chunker.WithOverlap(20)),
		index,
	)
}

// --- Mock implementations ---

// mockLLM implements driven.LLMService with scripted completions.
type mockLLM struct {
	mu        sync.Mutex
	responses []*driven.Completion
	errs      []error
	requests  []driven.CompletionRequest
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.requests)
	m.requests = append(m.requests, req)
	if n < len(m.errs) && m.errs[n] != nil {
		return nil, m.errs[n]
	}
	if n < len(m.responses) {
		return m.responses[n], nil
	}
	return &driven.Completion{Text: "done", StopReason: driven.StopEndTurn}, nil
}

func (m *mockLLM) ModelName() string {
	return "mock"
}

func (m *mockLLM) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLM) Close() error {
	return nil
}

// mockHistory implements driven.HistoryStore and fails on demand.
type mockHistory struct {
	getErr    error
	appendErr error
	appended  int
}

func (m *mockHistory) GetHistory(_ context.Context, _ string) (string, error) {
	return "", m.getErr
}

func (m *mockHistory) Exchanges(_ context.Context, _ string) ([]domain.Exchange, error) {
	return nil, m.getErr
}

func (m *mockHistory) Append(_ context.Context, _, _, _ string) error {
	m.appended++
	return m.appendErr
}

func (m *mockHistory) Clear(_ context.Context, _ string) error {
	return nil
}

func (m *mockHistory) Close() error {
	return nil
}

// mockPrompts implements driven.PromptStore.
type mockPrompts struct {
	prompts map[string]string
}

func (m *mockPrompts) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}

// mockTool implements ToolExecutor and counts executions.
type mockTool struct {
	name   string
	output string
	err    error
	source *domain.Source
	calls  int
}

func (m *mockTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:       m.name,
		Parameters: []domain.ToolParameter{{Name: "query", Type: domain.ParameterString, Required: true}},
	}
}

func (m *mockTool) Execute(_ context.Context, _ map[string]any, rec *domain.ToolCallRecord) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if m.source != nil {
		rec.Add(*m.source)
	}
	return m.output, nil
}

// mockSearch implements driving.SearchService with a fixed outcome.
type mockSearch struct {
	outcome *domain.SearchOutcome
	err     error
	last    domain.SearchQuery
}

func (m *mockSearch) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	m.last = q
	return m.outcome, m.err
}

// failingEmbedder implements driven.EmbeddingService and always fails.
type failingEmbedder struct{}

var errEmbedFailed = errors.New("embedding backend down")

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errEmbedFailed
}

func (failingEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errEmbedFailed
}

func (failingEmbedder) Dimensions() int {
	return 8
}

func (failingEmbedder) ModelName() string {
	return "failing"
}

func (failingEmbedder) Ping(_ context.Context) error {
	return errEmbedFailed
}

func (failingEmbedder) Close() error {
	return nil
}

// mockSource implements driven.DocumentSource over fixed documents.
type mockSource struct {
	docs        []domain.RawDocument
	fetchErrs   []error
	validateErr error
	watchable   bool
	changes     chan domain.RawDocumentChange
}

func (m *mockSource) Type() string {
	return "mock"
}

func (m *mockSource) Name() string {
	return "mock://courses"
}

func (m *mockSource) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsWatch: m.watchable}
}

func (m *mockSource) Validate(_ context.Context) error {
	return m.validateErr
}

func (m *mockSource) Fetch(_ context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument, len(m.docs))
	errs := make(chan error, len(m.fetchErrs))
	for _, d := range m.docs {
		docs <- d
	}
	for _, e := range m.fetchErrs {
		errs <- e
	}
	close(docs)
	close(errs)
	return docs, errs
}

func (m *mockSource) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return m.changes, nil
}

func (m *mockSource) Close() error {
	return nil
}
