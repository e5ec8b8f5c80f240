package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// IngestService adds course documents to the index.
type IngestService interface {
	// IngestDocument extracts, parses, chunks and indexes one document.
	IngestDocument(ctx context.Context, raw *domain.RawDocument, opts domain.IngestOptions) domain.IngestResult

	// IngestBatch ingests documents one by one. A failing document is
	// recorded in the report and the batch continues.
	IngestBatch(ctx context.Context, docs []domain.RawDocument, opts domain.IngestOptions) *domain.IngestReport

	// IngestSource fetches every document of a source and ingests them.
	IngestSource(ctx context.Context, source driven.DocumentSource, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Watch ingests created or updated documents of a source until ctx is done.
	Watch(ctx context.Context, source driven.DocumentSource, opts domain.IngestOptions, onResult func(domain.IngestResult)) error
}
