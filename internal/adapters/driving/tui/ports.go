// Package tui provides an interactive terminal chat for coursemate.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions through the tool-calling loop.
	Query driving.QueryService

	// Search provides direct filtered search.
	Search driving.SearchService

	// Catalog lists indexed courses. Optional.
	Catalog driving.CatalogService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	query driving.QueryService,
	search driving.SearchService,
	catalog driving.CatalogService,
) *Ports {
	return &Ports{
		Query:   query,
		Search:  search,
		Catalog: catalog,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
