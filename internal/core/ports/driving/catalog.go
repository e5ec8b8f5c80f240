package driving

import (
	"context"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// CatalogService exposes the course catalog.
type CatalogService interface {
	// Catalog lists every indexed course in ingestion order.
	Catalog(ctx context.Context) ([]domain.CatalogEntry, error)

	// ResolveCourseName returns the catalog title nearest to name.
	// ok is false when the catalog is empty.
	ResolveCourseName(ctx context.Context, name string) (title string, ok bool, err error)

	// Stats counts indexed courses and chunks.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Clear removes every course and chunk.
	Clear(ctx context.Context) error
}
