package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// SearchService provides filtered semantic search over course content.
type SearchService interface {
	// Search resolves the optional course filter and queries the content index.
	// An unresolved course name is reported through the outcome status,
	// never by falling back to an unfiltered search.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchOutcome, error)
}
