package driven

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// DocumentSource fetches raw course documents for ingestion.
// Each source type (filesystem, github) implements this interface.
type DocumentSource interface {
	// Type returns the source type identifier.
	Type() string

	// Name identifies the configured location (a path, a repository path).
	Name() string

	// Capabilities returns what this source supports.
	Capabilities() SourceCapabilities

	// Validate checks the source is reachable and readable.
	Validate(ctx context.Context) error

	// Fetch streams every supported document of the source.
	// Both channels are closed when fetching ends. A per-document error is
	// sent on the error channel without stopping the fetch.
	Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch listens for changes until ctx is cancelled.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// SourceCapabilities describes what a document source supports.
type SourceCapabilities struct {
	// SupportsWatch indicates the source can push change events.
	SupportsWatch bool

	// RequiresAuth indicates the source needs a token.
	RequiresAuth bool

	// SupportsRateLimiting indicates the source paces its own requests.
	SupportsRateLimiting bool
}

// FetchError ties a fetch failure to the document it concerns.
// Sources send it on the error channel of Fetch.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
