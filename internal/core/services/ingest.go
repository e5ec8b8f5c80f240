package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns raw documents into indexed courses:
// normalise, parse, chunk, then write both collections.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	parser      driven.CourseParser
	chunker     driven.Chunker
	index       *CourseIndex
	metrics     driven.MetricsRecorder
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	parser driven.CourseParser,
	chunker driven.Chunker,
	index *CourseIndex,
) *IngestService {
	return &IngestService{
		normalisers: normalisers,
		parser:      parser,
		chunker:     chunker,
		index:       index,
		metrics:     driven.NopMetrics{},
	}
}

// SetMetrics sets the metrics recorder. Nil disables recording.
func (s *IngestService) SetMetrics(m driven.MetricsRecorder) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	s.metrics = m
}

// IngestDocument indexes one document. An existing title is skipped unless
// opts.Force is set, in which case the course is replaced wholesale.
func (s *IngestService) IngestDocument(
	ctx context.Context, raw *domain.RawDocument, opts domain.IngestOptions,
) domain.IngestResult {
	res := s.ingest(ctx, raw, opts)
	s.metrics.DocumentIngested(res.Outcome)
	switch res.Outcome {
	case domain.IngestFailed:
		logger.Warn("Ingest %s failed: %v", res.URI, res.Err)
	default:
		logger.Debug("Ingest %s: %s %q (%d chunks)", res.URI, res.Outcome, res.CourseTitle, res.Chunks)
	}
	return res
}

func (s *IngestService) ingest(ctx context.Context, raw *domain.RawDocument, opts domain.IngestOptions) domain.IngestResult {
	if raw == nil {
		return domain.IngestResult{Outcome: domain.IngestFailed, Err: domain.ErrInvalidInput}
	}
	res := domain.IngestResult{URI: raw.URI}
	failed := func(err error) domain.IngestResult {
		res.Outcome = domain.IngestFailed
		res.Err = err
		return res
	}

	text, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return failed(fmt.Errorf("extract text: %w", err))
	}
	course, err := s.parser.Parse(text)
	if err != nil {
		return failed(fmt.Errorf("parse: %w", err))
	}
	res.CourseTitle = course.Title

	exists, err := s.index.Exists(ctx, course.Title)
	if err != nil {
		return failed(err)
	}
	if exists && !opts.Force {
		res.Outcome = domain.IngestSkipped
		return res
	}

	chunks := s.chunker.ChunkCourse(course)
	if exists {
		if err := s.index.ReplaceCourse(ctx, course, chunks); err != nil {
			return failed(err)
		}
		res.Outcome = domain.IngestReplaced
		res.Chunks = len(chunks)
		return res
	}

	added, err := s.index.UpsertCourse(ctx, course, chunks)
	if err != nil {
		return failed(err)
	}
	if !added {
		res.Outcome = domain.IngestSkipped
		return res
	}
	res.Outcome = domain.IngestAdded
	res.Chunks = len(chunks)
	return res
}

// IngestBatch ingests documents in order. Failures are recorded and the
// batch continues; cancellation stops it.
func (s *IngestService) IngestBatch(
	ctx context.Context, docs []domain.RawDocument, opts domain.IngestOptions,
) *domain.IngestReport {
	logger.Section("Ingest")
	report := &domain.IngestReport{}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			logger.Warn("Ingest cancelled with %d document(s) left", len(docs)-i)
			break
		}
		report.Add(s.IngestDocument(ctx, &docs[i], opts))
	}
	logger.Info("Ingested %d added, %d replaced, %d skipped, %d failed",
		report.Count(domain.IngestAdded), report.Count(domain.IngestReplaced),
		report.Count(domain.IngestSkipped), report.Count(domain.IngestFailed))
	return report
}

// IngestSource streams every document of the source into the index.
// Per-document fetch errors are recorded as failures.
func (s *IngestService) IngestSource(
	ctx context.Context, source driven.DocumentSource, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	logger.Section("Ingest " + source.Type())
	if err := source.Validate(ctx); err != nil {
		return nil, fmt.Errorf("source %s: %w", source.Name(), err)
	}

	docs, errs := source.Fetch(ctx)
	report := &domain.IngestReport{}
	for docs != nil || errs != nil {
		select {
		case doc, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			report.Add(s.IngestDocument(ctx, &doc, opts))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var fe *driven.FetchError
			uri := source.Name()
			if errors.As(err, &fe) {
				uri = fe.URI
			}
			logger.Warn("Fetch from %s failed: %v", uri, err)
			s.metrics.DocumentIngested(domain.IngestFailed)
			report.Add(domain.IngestResult{URI: uri, Outcome: domain.IngestFailed, Err: err})
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// Watch ingests created and updated documents until ctx is done.
// Updates replace the existing course; deletions are logged only.
func (s *IngestService) Watch(
	ctx context.Context,
	source driven.DocumentSource,
	opts domain.IngestOptions,
	onResult func(domain.IngestResult),
) error {
	if !source.Capabilities().SupportsWatch {
		return fmt.Errorf("source %s cannot be watched: %w", source.Type(), domain.ErrUnsupportedType)
	}
	changes, err := source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", source.Name(), err)
	}
	logger.Info("Watching %s for changes", source.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Type == domain.ChangeDeleted {
				logger.Info("Document removed: %s (index unchanged)", change.Document.URI)
				continue
			}
			docOpts := opts
			if change.Type == domain.ChangeUpdated {
				docOpts.Force = true
			}
			res := s.IngestDocument(ctx, &change.Document, docOpts)
			if onResult != nil {
				onResult(res)
			}
		}
	}
}
