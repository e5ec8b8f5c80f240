package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure CourseIndex implements the interfaces.
var (
	_ driving.SearchService  = (*CourseIndex)(nil)
	_ driving.CatalogService = (*CourseIndex)(nil)
)

// DefaultEmbedBatchSize bounds the number of texts sent per embedding request.
const DefaultEmbedBatchSize = 64

// CourseIndex is the dual index: a catalog collection with one record per
// course, used to resolve fuzzy course names, and a content collection with
// one record per chunk, used for filtered semantic search.
type CourseIndex struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	metrics   driven.MetricsRecorder
	batchSize int
}

// NewCourseIndex creates a course index over the given store and embedder.
func NewCourseIndex(store driven.VectorStore, embedder driven.EmbeddingService) *CourseIndex {
	return &CourseIndex{
		store:     store,
		embedder:  embedder,
		metrics:   driven.NopMetrics{},
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetMetrics sets the metrics recorder. Nil disables recording.
func (i *CourseIndex) SetMetrics(m driven.MetricsRecorder) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	i.metrics = m
}

// SetBatchSize sets the embedding batch size.
func (i *CourseIndex) SetBatchSize(n int) {
	if n > 0 {
		i.batchSize = n
	}
}

// Exists reports whether a course with this exact title is cataloged.
func (i *CourseIndex) Exists(ctx context.Context, title string) (bool, error) {
	records, err := i.store.Get(ctx, driven.CollectionCatalog, []string{title})
	if err != nil {
		return false, fmt.Errorf("lookup course %q: %w", title, err)
	}
	return len(records) > 0, nil
}

// UpsertCourse adds a course and its chunks. It is a no-op returning false
// when the title is already cataloged.
func (i *CourseIndex) UpsertCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) (bool, error) {
	exists, err := i.Exists(ctx, course.Title)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug("Course %q already indexed, skipping", course.Title)
		return false, nil
	}
	if err := i.write(ctx, course, chunks); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceCourse removes any existing catalog entry and chunks for the
// course title, then writes the course afresh.
func (i *CourseIndex) ReplaceCourse(ctx context.Context, course *domain.Course, chunks []domain.Chunk) error {
	if err := i.remove(ctx, course.Title); err != nil {
		return err
	}
	return i.write(ctx, course, chunks)
}

func (i *CourseIndex) remove(ctx context.Context, title string) error {
	filter := driven.Filter{driven.MetaCourseTitle: title}
	removed, err := i.store.Delete(ctx, driven.CollectionContent, filter)
	if err != nil {
		return fmt.Errorf("delete chunks of %q: %w", title, err)
	}
	if _, err := i.store.Delete(ctx, driven.CollectionCatalog, filter); err != nil {
		return fmt.Errorf("delete catalog entry %q: %w", title, err)
	}
	logger.Debug("Removed course %q (%d chunks)", title, removed)
	return nil
}

// write embeds and stores content before the catalog entry, so a course is
// only visible to Exists once its chunks are in place.
func (i *CourseIndex) write(ctx context.Context, course *domain.Course, chunks []domain.Chunk) error {
	logger.Debug("Indexing course %q with %d chunks", course.Title, len(chunks))

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}
	vecs, err := i.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks of %q: %w", course.Title, err)
	}

	records := make([]driven.VectorRecord, len(chunks))
	for n, c := range chunks {
		records[n] = driven.VectorRecord{
			ID:       c.ID,
			Vector:   vecs[n],
			Document: c.Content,
			Metadata: map[string]any{
				driven.MetaCourseTitle:  c.CourseTitle,
				driven.MetaLessonNumber: c.LessonNumber,
				driven.MetaLessonLink:   c.LessonLink,
				driven.MetaChunkIndex:   c.Position,
			},
		}
	}
	if len(records) > 0 {
		if err := i.store.Upsert(ctx, driven.CollectionContent, records); err != nil {
			return fmt.Errorf("store chunks of %q: %w", course.Title, err)
		}
	}

	entry := course.CatalogEntry()
	summaryVec, err := i.embedder.Embed(ctx, entry.Summary)
	if err != nil {
		return fmt.Errorf("embed catalog entry %q: %w", course.Title, err)
	}
	lessons, err := json.Marshal(entry.Lessons)
	if err != nil {
		return fmt.Errorf("encode lessons of %q: %w", course.Title, err)
	}
	catalog := driven.VectorRecord{
		ID:       course.Title,
		Vector:   summaryVec,
		Document: entry.Summary,
		Metadata: map[string]any{
			driven.MetaCourseTitle: course.Title,
			driven.MetaInstructor:  entry.Instructor,
			driven.MetaCourseLink:  entry.Link,
			driven.MetaLessonCount: entry.LessonCount,
			driven.MetaLessonsJSON: string(lessons),
		},
	}
	if err := i.store.Upsert(ctx, driven.CollectionCatalog, []driven.VectorRecord{catalog}); err != nil {
		return fmt.Errorf("store catalog entry %q: %w", course.Title, err)
	}
	return nil
}

func (i *CourseIndex) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.batchSize {
		end := min(start+i.batchSize, len(texts))
		vecs, err := i.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// ResolveCourseName returns the cataloged title nearest to name. There is no
// similarity threshold: any non-empty catalog yields a title.
func (i *CourseIndex) ResolveCourseName(ctx context.Context, name string) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}
	vec, err := i.embedder.Embed(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("embed course name: %w", err)
	}
	matches, err := i.store.Query(ctx, driven.CollectionCatalog, vec, nil, 1)
	if err != nil {
		return "", false, fmt.Errorf("query catalog: %w", err)
	}
	if len(matches) == 0 {
		logger.Debug("Course name %q: catalog is empty", name)
		return "", false, nil
	}
	title := metaString(matches[0].Record.Metadata, driven.MetaCourseTitle)
	if title == "" {
		title = matches[0].Record.ID
	}
	logger.Debug("Course name %q resolved to %q (score %.3f)", name, title, matches[0].Score)
	return title, true, nil
}

// Search resolves the course filter, then queries the content collection.
// An unresolved course filter yields an empty outcome with status
// course_not_resolved; the search never widens to all courses.
func (i *CourseIndex) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	logger.Section("Content Search")
	started := time.Now()

	query := strings.TrimSpace(q.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}
	logger.Debug("Query: %q", query)

	outcome := &domain.SearchOutcome{Status: domain.SearchStatusOK}
	filter := driven.Filter{}

	if q.CourseName != nil && strings.TrimSpace(*q.CourseName) != "" {
		title, ok, err := i.ResolveCourseName(ctx, *q.CourseName)
		if err != nil {
			return nil, err
		}
		if !ok {
			outcome.Status = domain.SearchStatusCourseNotResolved
			i.metrics.Search(outcome.Status, time.Since(started))
			return outcome, nil
		}
		outcome.ResolvedCourse = title
		filter[driven.MetaCourseTitle] = title
	}
	if q.LessonNumber != nil {
		filter[driven.MetaLessonNumber] = *q.LessonNumber
	}
	logger.Debug("Filter: %v, limit: %d", map[string]any(filter), q.EffectiveLimit())

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := i.store.Query(ctx, driven.CollectionContent, vec, filter, q.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}

	outcome.Results = make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		outcome.Results = append(outcome.Results, toResult(m))
	}
	logger.Debug("Found %d results", len(outcome.Results))
	i.metrics.Search(outcome.Status, time.Since(started))
	return outcome, nil
}

func toResult(m driven.VectorMatch) domain.SearchResult {
	meta := m.Record.Metadata
	chunk := domain.Chunk{
		ID:          m.Record.ID,
		CourseTitle: metaString(meta, driven.MetaCourseTitle),
		LessonLink:  metaString(meta, driven.MetaLessonLink),
		Content:     m.Record.Document,
		Embedding:   m.Record.Vector,
	}
	chunk.Position, _ = metaInt(meta, driven.MetaChunkIndex)

	var lesson *int
	if n, ok := metaInt(meta, driven.MetaLessonNumber); ok {
		chunk.LessonNumber = n
		lesson = &n
	}
	return domain.SearchResult{
		Chunk: chunk,
		Score: m.Score,
		Label: domain.SourceLabel(chunk.CourseTitle, lesson),
	}
}

// Catalog lists every indexed course in ingestion order.
func (i *CourseIndex) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	records, err := i.store.List(ctx, driven.CollectionCatalog, nil)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	entries := make([]domain.CatalogEntry, 0, len(records))
	for _, r := range records {
		entry := domain.CatalogEntry{
			Title:      metaString(r.Metadata, driven.MetaCourseTitle),
			Instructor: metaString(r.Metadata, driven.MetaInstructor),
			Link:       metaString(r.Metadata, driven.MetaCourseLink),
			Summary:    r.Document,
		}
		if entry.Title == "" {
			entry.Title = r.ID
		}
		entry.LessonCount, _ = metaInt(r.Metadata, driven.MetaLessonCount)
		if raw := metaString(r.Metadata, driven.MetaLessonsJSON); raw != "" {
			if err := json.Unmarshal([]byte(raw), &entry.Lessons); err != nil {
				logger.Warn("Catalog entry %q has unreadable lessons: %v", entry.Title, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stats counts indexed courses and chunks.
func (i *CourseIndex) Stats(ctx context.Context) (domain.IndexStats, error) {
	courses, err := i.store.Count(ctx, driven.CollectionCatalog)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("count catalog: %w", err)
	}
	chunks, err := i.store.Count(ctx, driven.CollectionContent)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("count content: %w", err)
	}
	return domain.IndexStats{Courses: courses, Chunks: chunks}, nil
}

// Clear drops both collections.
func (i *CourseIndex) Clear(ctx context.Context) error {
	if err := i.store.Drop(ctx, driven.CollectionContent); err != nil {
		return fmt.Errorf("drop content: %w", err)
	}
	if err := i.store.Drop(ctx, driven.CollectionCatalog); err != nil {
		return fmt.Errorf("drop catalog: %w", err)
	}
	return nil
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
